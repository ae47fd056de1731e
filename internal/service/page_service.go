package service

import (
	"context"
	"fmt"

	config "github.com/Chris701117/pagepilot/configs"
	"github.com/Chris701117/pagepilot/internal/models"
	"github.com/Chris701117/pagepilot/internal/repository"
	"github.com/Chris701117/pagepilot/internal/transfer"
	"github.com/Chris701117/pagepilot/pkg/utils"
)

type PageService interface {
	Create(ctx context.Context, ownerID int64, pc *transfer.PageCreation) (*models.Page, error)
	Info(ctx context.Context, pageID int64) (*models.Page, error)
	List(ctx context.Context, ownerID int64) ([]*models.Page, error)
	Remove(ctx context.Context, ownerID, pageID int64) error
}

type pageService struct {
	cfg config.Config
	pg  repository.PageRepository
}

func NewPageService(cfg config.Config, pg repository.PageRepository) PageService {
	return &pageService{cfg: cfg, pg: pg}
}

func (s *pageService) Create(ctx context.Context, ownerID int64, pc *transfer.PageCreation) (*models.Page, error) {
	if pc.Name == "" {
		return nil, fmt.Errorf("%w: page name cannot be empty", ErrInvalidState)
	}

	// The credential is opaque to the core; it is stored encrypted and only
	// decrypted for a publish call.
	encryptedToken, err := utils.Encrypt([]byte(pc.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	page := models.Page{
		OwnerID:     ownerID,
		Name:        pc.Name,
		AccessToken: encryptedToken,
		Connected:   pc.Connected,
		Simulation:  pc.Simulation,
	}

	id, err := s.pg.Create(ctx, &page)
	if err != nil {
		return nil, err
	}

	return s.pg.GetByID(ctx, id)
}

func (s *pageService) Info(ctx context.Context, pageID int64) (*models.Page, error) {
	page, err := s.pg.GetByID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, ErrPageNotFound
	}
	return page, nil
}

func (s *pageService) List(ctx context.Context, ownerID int64) ([]*models.Page, error) {
	return s.pg.ListByOwner(ctx, ownerID)
}

func (s *pageService) Remove(ctx context.Context, ownerID, pageID int64) error {
	page, err := s.pg.GetByID(ctx, pageID)
	if err != nil {
		return err
	}
	if page == nil || page.OwnerID != ownerID {
		return ErrPageNotFound
	}

	// Posts on the page keep their page reference and become orphans; the
	// trash restore path reattaches them to a live page.
	return s.pg.Remove(ctx, pageID)
}
