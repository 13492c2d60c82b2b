package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stocksmarthub/backend/internal/domain"
	"github.com/stocksmarthub/backend/internal/telemetry"
)

var testLogger = telemetry.DiscardLogger()

// scriptedSource returns its scripted results in order, then repeats the last one
type scriptedSource struct {
	name    string
	results []sourceResult
	calls   int
}

type sourceResult struct {
	ref *string
	err error
}

func (s *scriptedSource) Name() string { return s.name }

func (s *scriptedSource) Attempt(ctx context.Context, productName string) (*string, error) {
	s.calls++
	if len(s.results) == 0 {
		return nil, nil
	}
	i := s.calls - 1
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	return s.results[i].ref, s.results[i].err
}

func noneSource(name string) *scriptedSource {
	return &scriptedSource{name: name}
}

func foundSource(name, ref string) *scriptedSource {
	return &scriptedSource{name: name, results: []sourceResult{{ref: domain.Ref(ref)}}}
}

func failingSource(name string) *scriptedSource {
	return &scriptedSource{name: name, results: []sourceResult{{err: domain.ErrSourceUnavailable}}}
}

// recordingSleeper records requested delays without waiting
type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

// failingCache fails every operation
type failingCache struct{}

func (failingCache) Lookup(ctx context.Context, key string) (*string, bool, error) {
	return nil, false, errors.New("disk unavailable")
}

func (failingCache) Store(ctx context.Context, key string, ref *string) error {
	return errors.New("disk unavailable")
}

func (failingCache) Len() int { return 0 }

// memoryDataset is an in-memory product sheet
type memoryDataset struct {
	rows     []datasetRow
	dropped  int
	loadErr  error
	saveErr  error
	setErr   error
	loads    int
	saves    int
	setCalls int
}

type datasetRow struct {
	code  string
	name  string
	image string
}

func (d *memoryDataset) Load(ctx context.Context) error {
	d.loads++
	return d.loadErr
}

func (d *memoryDataset) Len() int { return len(d.rows) }

func (d *memoryDataset) Dropped() int { return d.dropped }

func (d *memoryDataset) ProductsWithoutImages() ([]domain.PendingProduct, error) {
	var out []domain.PendingProduct
	for i, r := range d.rows {
		if r.image == "" && r.name != "" {
			out = append(out, domain.PendingProduct{RowIndex: i, ProductCode: r.code, ProductName: r.name})
		}
	}
	return out, nil
}

func (d *memoryDataset) ProductsWithImages() ([]domain.AssignedImage, error) {
	var out []domain.AssignedImage
	for i, r := range d.rows {
		if r.image != "" && r.code != "" {
			out = append(out, domain.AssignedImage{RowIndex: i, ProductCode: r.code, ImageURL: r.image})
		}
	}
	return out, nil
}

func (d *memoryDataset) SetImageURL(rowIndex int, imageURL string) error {
	d.setCalls++
	if d.setErr != nil {
		return d.setErr
	}
	if rowIndex < 0 || rowIndex >= len(d.rows) {
		return domain.ErrRowOutOfRange
	}
	d.rows[rowIndex].image = imageURL
	return nil
}

func (d *memoryDataset) Save(ctx context.Context) error {
	d.saves++
	return d.saveErr
}

// memoryProducts is an in-memory products table keyed by product code
type memoryProducts struct {
	mu        sync.Mutex
	images    map[string]string
	updateErr error
	updates   int
}

func newMemoryProducts(codes ...string) *memoryProducts {
	p := &memoryProducts{images: make(map[string]string)}
	for _, c := range codes {
		p.images[c] = ""
	}
	return p
}

func (p *memoryProducts) UpdateImageURL(ctx context.Context, code, imageURL string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates++
	if p.updateErr != nil {
		return 0, p.updateErr
	}
	if _, ok := p.images[code]; !ok {
		return 0, nil
	}
	p.images[code] = imageURL
	return 1, nil
}

func (p *memoryProducts) FillMissingImageURL(ctx context.Context, code, imageURL string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.updateErr != nil {
		return 0, p.updateErr
	}
	img, ok := p.images[code]
	if !ok || img != "" {
		return 0, nil
	}
	p.images[code] = imageURL
	return 1, nil
}
