package users

import (
	"context"

	"github.com/dmitrijs2005/seedclassifier/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	SetPassword(ctx context.Context, login, passwordHash string) error
}
