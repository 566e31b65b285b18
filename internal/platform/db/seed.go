package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"appraisal/internal/domain/auth"
	"appraisal/internal/platform/config"
)

// Seed brings reference data to a known state: permissions, roles,
// role grants, category rules, scoring settings and the HR admin
// account. Every step is idempotent.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensurePermissions(ctx, pool); err != nil {
		return err
	}

	roleIDs, err := ensureRoles(ctx, pool)
	if err != nil {
		return err
	}

	if err := ensureRolePermissions(ctx, pool, roleIDs); err != nil {
		return err
	}

	if err := ensureCategoryRules(ctx, pool); err != nil {
		return err
	}

	if err := ensureSystemSettings(ctx, pool); err != nil {
		return err
	}

	return ensureHRAdmin(ctx, pool, roleIDs[auth.RoleHR], cfg.SeedHRAdminEmail, cfg.SeedHRAdminPassword)
}

func ensurePermissions(ctx context.Context, pool *pgxpool.Pool) error {
	for _, perm := range auth.DefaultPermissions {
		_, err := pool.Exec(ctx, "INSERT INTO permissions (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", perm)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureRoles(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	roleIDs := map[string]string{}
	for roleName := range auth.RolePermissions {
		var id string
		err := pool.QueryRow(ctx, "SELECT id FROM roles WHERE name = $1", roleName).Scan(&id)
		if err == nil {
			roleIDs[roleName] = id
			continue
		}

		err = pool.QueryRow(ctx, "INSERT INTO roles (name) VALUES ($1) RETURNING id", roleName).Scan(&id)
		if err != nil {
			return nil, err
		}
		roleIDs[roleName] = id
	}
	return roleIDs, nil
}

func ensureRolePermissions(ctx context.Context, pool *pgxpool.Pool, roleIDs map[string]string) error {
	permMap := map[string]string{}
	rows, err := pool.Query(ctx, "SELECT id, name FROM permissions")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		permMap[name] = id
	}

	for roleName, perms := range auth.RolePermissions {
		roleID := roleIDs[roleName]
		for _, permName := range perms {
			permID, ok := permMap[permName]
			if !ok {
				return errors.New("permission not found: " + permName)
			}
			_, err := pool.Exec(ctx, "INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", roleID, permID)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// Fixed institutional categories enumerate required sections; the
// custom category accepts free-form sections.
var defaultCategoryRules = map[string]string{
	"academic":       `{"requiredSections":["teaching","research","service"],"allowCustomSections":false}`,
	"administrative": `{"requiredSections":["core_duties","initiative","conduct"],"allowCustomSections":false}`,
	"support":        `{"requiredSections":["core_duties","reliability"],"allowCustomSections":false}`,
	"custom":         `{"requiredSections":[],"allowCustomSections":true}`,
}

func ensureCategoryRules(ctx context.Context, pool *pgxpool.Pool) error {
	for category, rules := range defaultCategoryRules {
		_, err := pool.Exec(ctx, `
      INSERT INTO category_rules (category, rules_json)
      VALUES ($1, $2)
      ON CONFLICT (category) DO NOTHING
    `, category, []byte(rules))
		if err != nil {
			return err
		}
	}
	return nil
}

var defaultSystemSettings = map[string]string{
	"band_thresholds":         `{"outstanding":0.9,"exceeds":0.8,"meets":0.6,"below":0.4}`,
	"finalize_required_slots": `["employee","supervisor","divisional"]`,
}

func ensureSystemSettings(ctx context.Context, pool *pgxpool.Pool) error {
	for key, value := range defaultSystemSettings {
		_, err := pool.Exec(ctx, `
      INSERT INTO system_settings (key, value_json)
      VALUES ($1, $2)
      ON CONFLICT (key) DO NOTHING
    `, key, []byte(value))
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureHRAdmin(ctx context.Context, pool *pgxpool.Pool, roleID, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return pool.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role_id, status)
    VALUES ($1, $2, $3, 'active')
    RETURNING id
  `, email, hash, roleID).Scan(&id)
}
