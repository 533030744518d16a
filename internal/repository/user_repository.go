package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"taskcompass/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// LoadUsers retrieves every account.
func (r *UserRepository) LoadUsers(ctx context.Context) ([]model.UserAccount, error) {
	var accounts []model.UserAccount
	result := r.db.WithContext(ctx).Order("created_at").Find(&accounts)
	if result.Error != nil {
		return nil, result.Error
	}
	return accounts, nil
}

// SaveUsers replaces the stored accounts with the given snapshot.
func (r *UserRepository) SaveUsers(ctx context.Context, accounts []model.UserAccount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		uids := make([]string, 0, len(accounts))
		for i := range accounts {
			if err := tx.Save(&accounts[i]).Error; err != nil {
				return err
			}
			uids = append(uids, accounts[i].UID)
		}
		if len(uids) == 0 {
			return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.UserAccount{}).Error
		}
		return tx.Where("uid NOT IN ?", uids).Delete(&model.UserAccount{}).Error
	})
}

// FindByUsername returns a single account by its login name.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.UserAccount, error) {
	var account model.UserAccount
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
