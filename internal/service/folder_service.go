package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/formflowhq/formflow/internal/models"
)

var ErrFolderNotFound = errors.New("folder not found")

type FolderStore interface {
	Create(ctx context.Context, folder *models.Folder) error
	FindByID(ctx context.Context, id string) (*models.Folder, error)
	FindAllByUser(ctx context.Context, userID string) ([]models.Folder, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
	CountByUser(ctx context.Context, userID string) (int, error)
}

type FolderService struct {
	folders FolderStore
}

func NewFolderService(folders FolderStore) *FolderService {
	return &FolderService{folders: folders}
}

func (s *FolderService) List(ctx context.Context, userID string) ([]models.Folder, error) {
	return s.folders.FindAllByUser(ctx, userID)
}

// Create appends the folder at the end of the user's sidebar order.
func (s *FolderService) Create(ctx context.Context, userID, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("folder name is required")
	}
	count, err := s.folders.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	folder := &models.Folder{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       name,
		OrderIndex: count,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.folders.Create(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *FolderService) Rename(ctx context.Context, userID, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("folder name is required")
	}
	if _, err := s.ownedFolder(ctx, userID, id); err != nil {
		return err
	}
	return s.folders.Rename(ctx, id, name)
}

// Delete removes the folder; its forms move back to the root.
func (s *FolderService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.ownedFolder(ctx, userID, id); err != nil {
		return err
	}
	return s.folders.Delete(ctx, id)
}

func (s *FolderService) ownedFolder(ctx context.Context, userID, id string) (*models.Folder, error) {
	folder, err := s.folders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if folder == nil || folder.UserID != userID {
		return nil, ErrFolderNotFound
	}
	return folder, nil
}
