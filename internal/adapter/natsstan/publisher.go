package natsstan

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	stan "github.com/nats-io/stan.go"

	"github.com/example/presta-export-service/internal/domain"
)

// Publisher announces completed export runs on a streaming subject.
type Publisher struct {
	Subject string
	sc      stan.Conn
}

func NewPublisher(clusterID, clientID, natsURL, subject string) (*Publisher, error) {
	if clientID == "" {
		clientID = fmt.Sprintf("presta-export-%d", time.Now().UnixNano())
	}
	sc, err := stan.Connect(clusterID, clientID, stan.NatsURL(natsURL))
	if err != nil {
		return nil, err
	}
	return &Publisher{Subject: subject, sc: sc}, nil
}

func (p *Publisher) ExportCompleted(_ context.Context, sum domain.ExportSummary) error {
	b, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	return p.sc.Publish(p.Subject, b)
}

func (p *Publisher) Close() error { return p.sc.Close() }

var _ domain.ExportNotifier = (*Publisher)(nil)
