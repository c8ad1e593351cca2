package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"aivisibility/internal/models"
)

// GetWizardProgress returns the saved wizard position for a domain.
func (d *DB) GetWizardProgress(ctx context.Context, domainID uuid.UUID) (*models.WizardProgress, error) {
	var p models.WizardProgress
	err := d.Pool.QueryRow(ctx, `
		SELECT domain_id, step, max_step, updated_at
		FROM wizard_progress WHERE domain_id = $1
	`, domainID).Scan(&p.DomainID, &p.Step, &p.MaxStep, &p.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProgressNotFound
	}
	if err != nil {
		return nil, err
	}

	p.StepName = models.StepName(p.Step)
	return &p, nil
}

// SaveWizardProgress stores the current step. The furthest step reached is
// kept, so moving back does not lose progress.
func (d *DB) SaveWizardProgress(ctx context.Context, domainID uuid.UUID, step int) (*models.WizardProgress, error) {
	if err := models.ValidateStep(step); err != nil {
		return nil, err
	}

	var p models.WizardProgress
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO wizard_progress (domain_id, step, max_step)
		VALUES ($1, $2, $2)
		ON CONFLICT (domain_id) DO UPDATE SET
			step = EXCLUDED.step,
			max_step = GREATEST(wizard_progress.max_step, EXCLUDED.step),
			updated_at = NOW()
		RETURNING domain_id, step, max_step, updated_at
	`, domainID, step).Scan(&p.DomainID, &p.Step, &p.MaxStep, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save wizard progress: %w", err)
	}

	p.StepName = models.StepName(p.Step)
	return &p, nil
}

// CountDomainsByStep returns how many domains currently sit at each step.
func (d *DB) CountDomainsByStep(ctx context.Context) (map[int]int, error) {
	rows, err := d.Pool.Query(ctx, `SELECT step, COUNT(*) FROM wizard_progress GROUP BY step`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var step, count int
		if err := rows.Scan(&step, &count); err != nil {
			return nil, err
		}
		counts[step] = count
	}
	return counts, rows.Err()
}
