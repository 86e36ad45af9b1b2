package rowstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
)

// Memory is an in-memory Store with the same positional semantics as the
// Postgres adapter. Used by unit tests and by the resolver/service tests
// that need a seeded store without a database.
type Memory struct {
	mu     sync.Mutex
	sheets map[string][][]string
}

// NewMemory returns a Memory store with every known sheet created and its
// header row seeded, mirroring the bootstrap migration.
func NewMemory() *Memory {
	m := &Memory{sheets: make(map[string][][]string)}
	for sheet, header := range Headers {
		m.sheets[sheet] = [][]string{append([]string(nil), header...)}
	}
	return m
}

var _ Store = (*Memory)(nil)

func (m *Memory) rows(sheet string) ([][]string, error) {
	rows, ok := m.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("rowstore.Memory: unknown sheet %q: %w", sheet, domain.ErrStoreUnavailable)
	}
	return rows, nil
}

// GetRows returns a deep copy so callers can't mutate store state.
func (m *Memory) GetRows(_ context.Context, sheet string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.rows(sheet)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (m *Memory) GetRow(_ context.Context, sheet string, pos int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.rows(sheet)
	if err != nil {
		return nil, err
	}
	if pos < 1 || pos > len(rows) {
		return nil, fmt.Errorf("rowstore.Memory.GetRow: %s row %d: %w", sheet, pos, domain.ErrNotFound)
	}
	return append([]string(nil), rows[pos-1]...), nil
}

func (m *Memory) AppendRow(_ context.Context, sheet string, cells []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.rows(sheet)
	if err != nil {
		return err
	}
	m.sheets[sheet] = append(rows, append([]string(nil), cells...))
	return nil
}

func (m *Memory) UpdateCell(_ context.Context, sheet string, pos, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.rows(sheet)
	if err != nil {
		return err
	}
	if pos < 1 || pos > len(rows) {
		return fmt.Errorf("rowstore.Memory.UpdateCell: %s row %d: %w", sheet, pos, domain.ErrNotFound)
	}
	row := rows[pos-1]
	if col < 1 || col > len(row) {
		return fmt.Errorf("rowstore.Memory.UpdateCell: %s row %d col %d: %w", sheet, pos, col, domain.ErrNotFound)
	}
	row[col-1] = value
	return nil
}

func (m *Memory) DeleteRow(_ context.Context, sheet string, pos int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.rows(sheet)
	if err != nil {
		return err
	}
	if pos < 1 || pos > len(rows) {
		return fmt.Errorf("rowstore.Memory.DeleteRow: %s row %d: %w", sheet, pos, domain.ErrNotFound)
	}
	m.sheets[sheet] = append(rows[:pos-1], rows[pos:]...)
	return nil
}

func (m *Memory) FindExactMatch(_ context.Context, sheet string, value string, col int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.rows(sheet)
	if err != nil {
		return 0, err
	}
	for i := 1; i < len(rows); i++ { // skip header
		row := rows[i]
		if col >= 1 && col <= len(row) && row[col-1] == value {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("rowstore.Memory.FindExactMatch: %s %q: %w", sheet, value, domain.ErrNotFound)
}
