package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
)

const uniqueViolation = "23505"

type rowScanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// state is the JSON encoding of the replaceable project columns.
type state struct {
	attributes []byte
	filters    []byte
	icons      []byte
}

func encodeState(attrs domain.AttributeRecord, filters domain.Filters, icons []domain.IconResult) (state, error) {
	if icons == nil {
		icons = []domain.IconResult{}
	}
	var (
		s   state
		err error
	)
	if s.attributes, err = json.Marshal(attrs); err != nil {
		return s, fmt.Errorf("encode attributes: %w", err)
	}
	if s.filters, err = json.Marshal(filters); err != nil {
		return s, fmt.Errorf("encode filters: %w", err)
	}
	if s.icons, err = json.Marshal(icons); err != nil {
		return s, fmt.Errorf("encode icons: %w", err)
	}
	return s, nil
}

func (s state) decode(attrs *domain.AttributeRecord, filters *domain.Filters, icons *[]domain.IconResult) error {
	if len(s.attributes) > 0 {
		if err := json.Unmarshal(s.attributes, attrs); err != nil {
			return fmt.Errorf("decode attributes: %w", err)
		}
	}
	if len(s.filters) > 0 {
		if err := json.Unmarshal(s.filters, filters); err != nil {
			return fmt.Errorf("decode filters: %w", err)
		}
	}
	if len(s.icons) > 0 {
		if err := json.Unmarshal(s.icons, icons); err != nil {
			return fmt.Errorf("decode icons: %w", err)
		}
	}
	if *icons == nil {
		*icons = []domain.IconResult{}
	}
	return nil
}

const projectColumns = `id, owner_uid, name, attributes, filters, icons, screen_link, created_at, updated_at`

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p domain.Project
		s state
	)
	if err := row.Scan(&p.ID, &p.Owner, &p.Name, &s.attributes, &s.filters, &s.icons,
		&p.ScreenLink, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := s.decode(&p.Attributes, &p.Filters, &p.Icons); err != nil {
		return nil, err
	}
	return &p, nil
}

const historyColumns = `h.id, h.project_id, h.name, h.attributes, h.filters, h.icons, h.captured_at`

func scanSnapshot(row rowScanner) (*domain.HistorySnapshot, error) {
	var (
		h domain.HistorySnapshot
		s state
	)
	if err := row.Scan(&h.ID, &h.ProjectID, &h.Name, &s.attributes, &s.filters, &s.icons, &h.CapturedAt); err != nil {
		return nil, err
	}
	if err := s.decode(&h.Attributes, &h.Filters, &h.Icons); err != nil {
		return nil, err
	}
	return &h, nil
}
