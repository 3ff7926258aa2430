package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/example/presta-export-service/internal/domain"
)

const stampLayout = "2006-01-02-15-04-05"

// Writer serializes a run's aggregate into one CSV per supplier,
// named {supplier}_{YYYY-MM-DD-HH-MM-SS}.csv. Rows are sorted
// ascending by product name. Files written before a failure are
// left in place.
type Writer struct {
	Dir string
	Now func() time.Time // nil = time.Now
}

var _ domain.ExportWriter = (*Writer)(nil)

func (w *Writer) Write(a domain.SupplierAggregate) ([]string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, err
	}

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	// one timestamp per run; suppliers differ, so names cannot collide
	stamp := now().Format(stampLayout)

	var paths []string
	for supplier, products := range a {
		path := filepath.Join(w.Dir, fmt.Sprintf("%s_%s.csv", supplier, stamp))
		if err := writeFile(path, products); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, products map[string]*domain.ProductTotal) error {
	names := make([]string, 0, len(products))
	for name := range products {
		names = append(names, name)
	}
	sort.Strings(names)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"Name", "Quantity", "Price"}); err != nil {
		f.Close()
		return err
	}
	for _, name := range names {
		rec := products[name]
		if err := cw.Write([]string{name, strconv.Itoa(rec.Quantity), rec.Price}); err != nil {
			f.Close()
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
