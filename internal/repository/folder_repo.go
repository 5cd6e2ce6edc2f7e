package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/formflowhq/formflow/internal/models"
)

type FolderRepo struct {
	db *sql.DB
}

func NewFolderRepo(db *sql.DB) *FolderRepo {
	return &FolderRepo{db: db}
}

func (r *FolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO folders (id, user_id, name, order_index, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		folder.ID, folder.UserID, folder.Name, folder.OrderIndex, folder.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert folder: %w", err)
	}
	return nil
}

func (r *FolderRepo) FindByID(ctx context.Context, id string) (*models.Folder, error) {
	var f models.Folder
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, order_index, created_at FROM folders WHERE id = $1`, id).
		Scan(&f.ID, &f.UserID, &f.Name, &f.OrderIndex, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find folder: %w", err)
	}
	return &f, nil
}

func (r *FolderRepo) FindAllByUser(ctx context.Context, userID string) ([]models.Folder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, order_index, created_at
		FROM folders WHERE user_id = $1 ORDER BY order_index`, userID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var f models.Folder
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.OrderIndex, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

func (r *FolderRepo) Rename(ctx context.Context, id, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE folders SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("rename folder: %w", err)
	}
	return nil
}

// Delete removes the folder after releasing its forms to the root, so no
// form disappears with its folder.
func (r *FolderRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete folder: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE forms SET folder_id = NULL WHERE folder_id = $1`, id); err != nil {
		return fmt.Errorf("release folder forms: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	return tx.Commit()
}

func (r *FolderRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM folders WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}
