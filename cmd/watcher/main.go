package main

import (
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	stan "github.com/nats-io/stan.go"

	"github.com/example/presta-export-service/internal/domain"
)

// watcher tails the export-event subject and logs every completed
// aggregation run.
func main() {
	clusterID := getenv("STAN_CLUSTER_ID", "presta-cluster")
	clientID := getenv("STAN_WATCH_ID", "presta-watcher")
	natsURL := getenv("NATS_URL", "nats://localhost:4223")
	subject := getenv("STAN_SUBJECT", "exports")

	sc, err := stan.Connect(clusterID, clientID, stan.NatsURL(natsURL))
	if err != nil {
		log.Fatalf("stan connect: %v", err)
	}
	defer sc.Close()

	_, err = sc.Subscribe(subject, func(m *stan.Msg) {
		var sum domain.ExportSummary
		if err := json.Unmarshal(m.Data, &sum); err != nil {
			log.Printf("invalid export event: %v", err)
			return
		}
		log.Printf("run %s store=%s orders=%d suppliers=%d files=%d finished=%s",
			sum.RunID, sum.Store, sum.Orders, sum.Suppliers, len(sum.Files),
			sum.FinishedAt.Format(time.RFC3339))
	}, stan.DeliverAllAvailable())
	if err != nil {
		log.Fatalf("stan subscribe: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
