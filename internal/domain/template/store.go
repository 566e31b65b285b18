package template

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Get(ctx context.Context, templateID string) (Template, error) {
	var tpl Template
	var configJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, category, config_json, created_at, updated_at
    FROM appraisal_templates
    WHERE id = $1
  `, templateID).Scan(&tpl.ID, &tpl.Name, &tpl.Category, &configJSON, &tpl.CreatedAt, &tpl.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Template{}, ErrTemplateNotFound
	}
	if err != nil {
		return Template{}, err
	}
	if err := json.Unmarshal(configJSON, &tpl.Config); err != nil {
		return Template{}, err
	}
	return tpl, nil
}

func (s *Store) List(ctx context.Context) ([]Template, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, category, config_json, created_at, updated_at
    FROM appraisal_templates
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		var tpl Template
		var configJSON []byte
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Category, &configJSON, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(configJSON, &tpl.Config); err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, nil
}

func (s *Store) Create(ctx context.Context, name, category string, cfg TemplateConfig) (string, error) {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO appraisal_templates (name, category, config_json)
    VALUES ($1,$2,$3)
    RETURNING id
  `, name, category, configJSON).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, templateID, name string, cfg TemplateConfig) error {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE appraisal_templates
    SET name = $2, config_json = $3, updated_at = now()
    WHERE id = $1
  `, templateID, name, configJSON)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (s *Store) CategoryRules(ctx context.Context, category string) (CategoryRules, error) {
	var rulesJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT rules_json FROM category_rules WHERE category = $1
  `, category).Scan(&rulesJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return CategoryRules{}, ErrUnknownCategory
	}
	if err != nil {
		return CategoryRules{}, err
	}
	var rules CategoryRules
	if err := json.Unmarshal(rulesJSON, &rules); err != nil {
		return CategoryRules{}, err
	}
	return rules, nil
}
