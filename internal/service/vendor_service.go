package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

type VendorInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

type VendorService interface {
	CreateVendor(ctx context.Context, req VendorInput) (*model.Vendor, error)
	GetVendor(ctx context.Context, id string) (*model.Vendor, error)
	ListVendors(ctx context.Context) ([]model.Vendor, error)
	UpdateVendor(ctx context.Context, id string, req VendorInput) (*model.Vendor, error)
	DeleteVendor(ctx context.Context, id string) error
}

type vendorService struct {
	repo repository.VendorRepository
}

func NewVendorService(repo repository.VendorRepository) VendorService {
	return &vendorService{repo: repo}
}

func (s *vendorService) CreateVendor(ctx context.Context, req VendorInput) (*model.Vendor, error) {
	vendor := &model.Vendor{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Zip:     req.Zip,
	}
	if err := s.repo.Create(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

func (s *vendorService) GetVendor(ctx context.Context, id string) (*model.Vendor, error) {
	vendorID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	vendor, err := s.repo.FindByID(ctx, vendorID)
	if err != nil {
		return nil, ErrNotFound
	}
	return vendor, nil
}

func (s *vendorService) ListVendors(ctx context.Context) ([]model.Vendor, error) {
	return s.repo.List(ctx)
}

func (s *vendorService) UpdateVendor(ctx context.Context, id string, req VendorInput) (*model.Vendor, error) {
	vendor, err := s.GetVendor(ctx, id)
	if err != nil {
		return nil, err
	}

	vendor.Name = req.Name
	vendor.Email = req.Email
	vendor.Phone = req.Phone
	vendor.Address = req.Address
	vendor.City = req.City
	vendor.State = req.State
	vendor.Zip = req.Zip

	if err := s.repo.Update(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

func (s *vendorService) DeleteVendor(ctx context.Context, id string) error {
	vendor, err := s.GetVendor(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, vendor.ID)
}
