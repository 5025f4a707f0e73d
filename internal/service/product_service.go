package service

import (
	"context"
	"errors"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	SKU         string          `json:"sku" binding:"required"`
	Stock       int             `json:"stock"`
}

type ProductService interface {
	CreateProduct(ctx context.Context, req ProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id string, req ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) CreateProduct(ctx context.Context, req ProductInput) (*model.Product, error) {
	if _, err := s.repo.FindBySKU(ctx, req.SKU); err == nil {
		return nil, errors.New("sku already exists")
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		SKU:         req.SKU,
		Stock:       req.Stock,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, ErrNotFound
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.repo.List(ctx)
}

func (s *productService) UpdateProduct(ctx context.Context, id string, req ProductInput) (*model.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SKU != product.SKU {
		if _, err := s.repo.FindBySKU(ctx, req.SKU); err == nil {
			return nil, errors.New("sku already exists")
		}
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Category = req.Category
	product.SKU = req.SKU
	product.Stock = req.Stock

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, product.ID)
}
