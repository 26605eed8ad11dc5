package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

// seedFile preloads users and the items they own.
type seedFile struct {
	Users []seedUser `yaml:"users"`
}

type seedUser struct {
	Name  string     `yaml:"name"`
	Email string     `yaml:"email"`
	Items []seedItem `yaml:"items"`
}

type seedItem struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Available   bool   `yaml:"available"`
}

func loadSeed(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &seed, nil
}

// applySeed creates every seeded user whose email is still free, together
// with their items. Users that already exist are skipped so restarts do not
// duplicate items.
func applySeed(ctx context.Context, seed *seedFile, users *service.UserService, items *service.ItemService, logger *zerolog.Logger) (int, error) {
	created := 0
	for _, su := range seed.Users {
		name, email := su.Name, su.Email
		user, err := users.CreateUser(ctx, models.UserInput{Name: &name, Email: &email})
		if errors.Is(err, service.ErrDuplicateEmail) {
			logger.Debug().Str("email", email).Msg("Seed user exists, skipping")
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed user %q: %w", email, err)
		}
		created++

		for _, si := range su.Items {
			itemName, desc, available := si.Name, si.Description, si.Available
			if _, err := items.AddItem(ctx, user.ID, models.ItemInput{
				Name:        &itemName,
				Description: &desc,
				Available:   &available,
			}); err != nil {
				return created, fmt.Errorf("seed item %q: %w", itemName, err)
			}
		}
	}
	return created, nil
}
