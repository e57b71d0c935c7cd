package store

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"shopapi/internal/models"
)

const accountNotFound = "Customer account could not be found with that customer account ID"

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// AccountInput is a new account with a plaintext password.
type AccountInput struct {
	Username   string
	Password   string
	CustomerID uint
}

func (s *Store) ListAccounts(ctx context.Context, page Page) ([]models.CustomerAccount, int64, error) {
	accounts := []models.CustomerAccount{}
	total, err := list(ctx, s.db, &models.CustomerAccount{}, "account_id", page, &accounts)
	if err != nil {
		return nil, 0, translate(err, "list accounts")
	}
	return accounts, total, nil
}

// GetAccount returns the account with its customer loaded.
func (s *Store) GetAccount(ctx context.Context, id uint) (*models.CustomerAccount, error) {
	var account models.CustomerAccount
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := first(tx, &account, id, accountNotFound); err != nil {
			return err
		}
		var customer models.Customer
		if err := first(tx, &customer, account.CustomerID, customerNotFound); err != nil {
			return err
		}
		account.Customer = &customer
		return nil
	})
	if err != nil {
		return nil, translate(err, "get account")
	}
	return &account, nil
}

func (s *Store) CreateAccount(ctx context.Context, in AccountInput) (*models.CustomerAccount, error) {
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	account := models.CustomerAccount{
		Username:     in.Username,
		PasswordHash: hash,
		CustomerID:   in.CustomerID,
	}
	err = s.tx(ctx, func(tx *gorm.DB) error {
		if err := checkAccountCustomer(tx, in.CustomerID, 0); err != nil {
			return err
		}
		if err := checkUsername(tx, in.Username, 0); err != nil {
			return err
		}
		return tx.Create(&account).Error
	})
	if err != nil {
		return nil, translate(err, "create account")
	}
	return &account, nil
}

func (s *Store) UpdateAccount(ctx context.Context, id uint, patch models.CustomerAccountPatch) (*models.CustomerAccount, error) {
	var hash string
	if patch.Password != nil {
		var err error
		if hash, err = s.hashPassword(*patch.Password); err != nil {
			return nil, err
		}
	}

	var account models.CustomerAccount
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := first(tx, &account, id, accountNotFound); err != nil {
			return err
		}
		if patch.Username != nil && *patch.Username != account.Username {
			if err := checkUsername(tx, *patch.Username, id); err != nil {
				return err
			}
			account.Username = *patch.Username
		}
		if patch.CustomerID != nil && *patch.CustomerID != account.CustomerID {
			if err := checkAccountCustomer(tx, *patch.CustomerID, id); err != nil {
				return err
			}
			account.CustomerID = *patch.CustomerID
		}
		if patch.Password != nil {
			account.PasswordHash = hash
		}
		return save(tx, &account)
	})
	if err != nil {
		return nil, translate(err, "update account")
	}
	return &account, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id uint) error {
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var account models.CustomerAccount
		if err := first(tx, &account, id, accountNotFound); err != nil {
			return err
		}
		return tx.Delete(&account).Error
	})
	return translate(err, "delete account")
}

func (s *Store) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.passwordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", newError(ErrInvalidInput, "Password is longer than %d bytes", maxPasswordBytes)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// checkUsername fails with ErrConflict when username belongs to an account
// other than self.
func checkUsername(tx *gorm.DB, username string, self uint) error {
	taken, err := exists(tx, &models.CustomerAccount{}, "username = ? AND account_id <> ?", username, self)
	if err != nil {
		return err
	}
	if taken {
		return newError(ErrConflict, "Username %q is already in use", username)
	}
	return nil
}

// checkAccountCustomer verifies the customer exists and has no account
// other than self.
func checkAccountCustomer(tx *gorm.DB, customerID, self uint) error {
	found, err := exists(tx, &models.Customer{}, "customer_id = ?", customerID)
	if err != nil {
		return err
	}
	if !found {
		return newError(ErrInvalidReference, "Customer %d does not exist", customerID)
	}
	taken, err := exists(tx, &models.CustomerAccount{}, "customer_id = ? AND account_id <> ?", customerID, self)
	if err != nil {
		return err
	}
	if taken {
		return newError(ErrConflict, "Customer %d already has an account", customerID)
	}
	return nil
}
