package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/freshroots/admin-service/internal/enterprise"
	"github.com/freshroots/admin-service/internal/models"
	"github.com/jackc/pgx/v5"
)

// ErrEnterpriseNotFound is returned when an enterprise ID does not resolve
var ErrEnterpriseNotFound = errors.New("enterprise not found")

const enterpriseColumns = `
	e.id, e.name, e.permalink, e.owner_id, e.sells,
	e.is_primary_producer, e.producer_profile_only, e.shop_trial_start_date,
	e.created_at, e.updated_at
`

func scanEnterprise(row pgx.Row) (models.Enterprise, error) {
	var e models.Enterprise
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Permalink,
		&e.OwnerID,
		&e.Sells,
		&e.IsPrimaryProducer,
		&e.ProducerProfileOnly,
		&e.ShopTrialStartDate,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

func collectEnterprises(rows pgx.Rows) ([]models.Enterprise, error) {
	defer rows.Close()

	var out []models.Enterprise
	for rows.Next() {
		e, err := scanEnterprise(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enterprise: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enterprises: %w", err)
	}
	return out, nil
}

// getEnterprise fetches one enterprise with its manager set
func (h *Handler) getEnterprise(ctx context.Context, id int64) (models.Enterprise, error) {
	query := fmt.Sprintf(`SELECT %s FROM enterprises e WHERE e.id = $1`, enterpriseColumns)
	e, err := scanEnterprise(h.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Enterprise{}, ErrEnterpriseNotFound
		}
		return models.Enterprise{}, fmt.Errorf("failed to query enterprise: %w", err)
	}

	rows, err := h.db.Pool.Query(ctx, `SELECT user_id FROM enterprise_roles WHERE enterprise_id = $1 ORDER BY user_id`, id)
	if err != nil {
		return models.Enterprise{}, fmt.Errorf("failed to query enterprise roles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return models.Enterprise{}, fmt.Errorf("failed to scan enterprise role: %w", err)
		}
		e.ManagerIDs = append(e.ManagerIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return models.Enterprise{}, fmt.Errorf("error iterating enterprise roles: %w", err)
	}

	return e, nil
}

// managedEnterpriseIDs returns the IDs of enterprises the user owns or
// has a management role on
func (h *Handler) managedEnterpriseIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT e.id FROM enterprises e WHERE e.owner_id = $1
		UNION
		SELECT er.enterprise_id FROM enterprise_roles er WHERE er.user_id = $1
		ORDER BY 1
	`
	rows, err := h.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query managed enterprises: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan enterprise id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enterprise ids: %w", err)
	}
	return ids, nil
}

// AllEnterprises implements permissions.Directory
func (h *Handler) AllEnterprises(ctx context.Context) ([]models.Enterprise, error) {
	query := fmt.Sprintf(`SELECT %s FROM enterprises e ORDER BY e.id`, enterpriseColumns)
	rows, err := h.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query enterprises: %w", err)
	}
	return collectEnterprises(rows)
}

// ManagedEnterprises implements permissions.Directory
func (h *Handler) ManagedEnterprises(ctx context.Context, userID int64) ([]models.Enterprise, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM enterprises e
		WHERE e.owner_id = $1
		   OR EXISTS (SELECT 1 FROM enterprise_roles er WHERE er.enterprise_id = e.id AND er.user_id = $1)
		ORDER BY e.id
	`, enterpriseColumns)
	rows, err := h.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query managed enterprises: %w", err)
	}
	return collectEnterprises(rows)
}

// CycleParticipantIDs implements permissions.Directory. Unknown cycles
// resolve to an empty set rather than an error.
func (h *Handler) CycleParticipantIDs(ctx context.Context, orderCycleID int64) ([]int64, error) {
	rows, err := h.db.Pool.Query(ctx,
		`SELECT DISTINCT enterprise_id FROM order_cycle_enterprises WHERE order_cycle_id = $1`, orderCycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycle participants: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan participant id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant ids: %w", err)
	}
	return ids, nil
}

// CoordinatedEnterpriseIDs implements permissions.Directory
func (h *Handler) CoordinatedEnterpriseIDs(ctx context.Context, coordinatorID int64) ([]int64, error) {
	rows, err := h.db.Pool.Query(ctx, `
		SELECT DISTINCT oce.enterprise_id
		FROM order_cycle_enterprises oce
		JOIN order_cycles oc ON oc.id = oce.order_cycle_id
		WHERE oc.coordinator_id = $1
	`, coordinatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query coordinated enterprises: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan enterprise id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enterprise ids: %w", err)
	}
	return ids, nil
}

// ownsSellingEnterprise reports whether the user owns at least one
// enterprise with sells != none. Drives the creation default.
func (h *Handler) ownsSellingEnterprise(ctx context.Context, userID int64) (bool, error) {
	var owns bool
	err := h.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM enterprises WHERE owner_id = $1 AND sells <> 'none')`, userID).Scan(&owns)
	if err != nil {
		return false, fmt.Errorf("failed to check selling enterprises: %w", err)
	}
	return owns, nil
}

// existingPropertyIDs maps property names to IDs for producer-property
// matching
func (h *Handler) existingPropertyIDs(ctx context.Context) (map[string]int64, error) {
	rows, err := h.db.Pool.Query(ctx, `SELECT id, name FROM properties`)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		out[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating properties: %w", err)
	}
	return out, nil
}

// orderCycleExists reports whether an order cycle ID resolves
func (h *Handler) orderCycleExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := h.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM order_cycles WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check order cycle: %w", err)
	}
	return exists, nil
}

// enterpriseExists reports whether an enterprise ID resolves
func (h *Handler) enterpriseExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := h.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM enterprises WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check enterprise: %w", err)
	}
	return exists, nil
}

// createEnterprise inserts an enterprise and its manager roles in one
// transaction
func (h *Handler) createEnterprise(ctx context.Context, e models.Enterprise, managerIDs []int64) (models.Enterprise, error) {
	tx, err := h.db.Pool.Begin(ctx)
	if err != nil {
		return models.Enterprise{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO enterprises (name, permalink, owner_id, sells, is_primary_producer, producer_profile_only, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING `+strings.ReplaceAll(enterpriseColumns, "e.", "")+`
	`, e.Name, e.Permalink, e.OwnerID, e.Sells, e.IsPrimaryProducer, e.ProducerProfileOnly)

	created, err := scanEnterprise(row)
	if err != nil {
		return models.Enterprise{}, fmt.Errorf("failed to insert enterprise: %w", err)
	}

	for _, userID := range managerIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO enterprise_roles (user_id, enterprise_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING
		`, userID, created.ID); err != nil {
			return models.Enterprise{}, fmt.Errorf("failed to insert enterprise role: %w", err)
		}
		created.ManagerIDs = append(created.ManagerIDs, userID)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Enterprise{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

// applyEnterpriseParams applies an authorized change set atomically.
// Either all permitted fields commit or none.
func (h *Handler) applyEnterpriseParams(ctx context.Context, id int64, params models.EnterpriseParams, properties []models.ProducerProperty) error {
	tx, err := h.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Build the field update dynamically from the present params
	var sets []string
	var args []interface{}
	argIndex := 1

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if params.Name != nil {
		addSet("name", *params.Name)
	}
	if params.Permalink != nil {
		addSet("permalink", *params.Permalink)
	}
	if params.OwnerID != nil {
		addSet("owner_id", *params.OwnerID)
	}
	if params.Sells != nil {
		addSet("sells", *params.Sells)
	}
	if params.IsPrimaryProducer != nil {
		addSet("is_primary_producer", *params.IsPrimaryProducer)
	}
	if params.ProducerProfileOnly != nil {
		addSet("producer_profile_only", *params.ProducerProfileOnly)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = NOW()")
		query := fmt.Sprintf("UPDATE enterprises SET %s WHERE id = $%d", strings.Join(sets, ", "), argIndex)
		args = append(args, id)

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update enterprise: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrEnterpriseNotFound
		}
	}

	// Replace the manager set when one was submitted
	if params.UserIDs != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM enterprise_roles WHERE enterprise_id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear enterprise roles: %w", err)
		}
		for _, userID := range params.UserIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO enterprise_roles (user_id, enterprise_id)
				VALUES ($1, $2) ON CONFLICT DO NOTHING
			`, userID, id); err != nil {
				return fmt.Errorf("failed to insert enterprise role: %w", err)
			}
		}
	}

	// Replace producer properties with the matched assignments
	if params.ProducerPropertiesAttributes != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM producer_properties WHERE enterprise_id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear producer properties: %w", err)
		}
		for _, p := range properties {
			if _, err := tx.Exec(ctx, `
				INSERT INTO producer_properties (enterprise_id, property_id, value)
				VALUES ($1, $2, $3)
			`, id, p.PropertyID, p.Value); err != nil {
				return fmt.Errorf("failed to insert producer property: %w", err)
			}
		}
	}

	return tx.Commit(ctx)
}

// applySellsChange persists the outcome of a sells transition
func (h *Handler) applySellsChange(ctx context.Context, id int64, change enterprise.SellsChange) error {
	tag, err := h.db.Pool.Exec(ctx, `
		UPDATE enterprises
		SET sells = $1, producer_profile_only = $2, shop_trial_start_date = $3, updated_at = NOW()
		WHERE id = $4
	`, change.Sells, change.ProducerProfileOnly, change.ShopTrialStartDate, id)
	if err != nil {
		return fmt.Errorf("failed to apply sells change: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEnterpriseNotFound
	}
	return nil
}
