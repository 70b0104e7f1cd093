package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/mrcrpro/panaguas/lending/features/command/registerstation"
	"github.com/mrcrpro/panaguas/lending/features/command/registeruser"
	"github.com/mrcrpro/panaguas/lending/shared/core"
	"github.com/mrcrpro/panaguas/lending/shared/shell"
)

var userIDNamespace = uuid.MustParse("8a3e1f52-0c7d-5b9e-a4c1-3f6d2e9b7a10")

var (
	// ErrInvalidFile is returned if the seed file is malformed or incomplete.
	ErrInvalidFile = errors.New("seed: invalid file")
)

// File is the content of a seed file.
type File struct {
	Stations []Station `yaml:"stations"`
	Users    []User    `yaml:"users"`
}

// Station is one station entry. Available defaults to Capacity.
type Station struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Location  string  `yaml:"location"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Capacity  int     `yaml:"capacity"`
	Available *int    `yaml:"available"`
}

// User is one user entry. Without an explicit id the id is derived from the student code.
type User struct {
	ID          string `yaml:"id"`
	StudentCode string `yaml:"studentCode"`
	Name        string `yaml:"name"`
	Email       string `yaml:"email"`
	Tier        string `yaml:"tier"`
}

// Handlers are the command handlers used by Apply.
type Handlers struct {
	RegisterStation shell.CommandHandler[registerstation.Command]
	RegisterUser    shell.CommandHandler[registeruser.Command]
}

// Result counts the outcome of Apply.
type Result struct {
	StationsRegistered int
	UsersRegistered    int
	Unchanged          int
}

// LoadFile reads and parses the seed file at path.
func LoadFile(path string) (File, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return File{}, err
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

// Parse decodes a seed file. Unknown keys are rejected.
func Parse(r io.Reader) (File, error) {
	var file File

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	if err := file.validate(); err != nil {
		return File{}, err
	}

	return file, nil
}

func (f File) validate() error {
	for i, s := range f.Stations {
		if s.ID == "" || s.Name == "" {
			return fmt.Errorf("%w: station #%d needs id and name", ErrInvalidFile, i+1)
		}
	}

	for i, u := range f.Users {
		if u.StudentCode == "" || u.Name == "" || u.Email == "" {
			return fmt.Errorf("%w: user #%d needs studentCode, name and email", ErrInvalidFile, i+1)
		}

		if u.ID != "" {
			if _, err := uuid.Parse(u.ID); err != nil {
				return fmt.Errorf("%w: user #%d has a malformed id", ErrInvalidFile, i+1)
			}
		}
	}

	return nil
}

// UserID returns the explicit id or the one derived from the student code.
func (u User) UserID() uuid.UUID {
	if id, err := uuid.Parse(u.ID); err == nil {
		return id
	}

	return uuid.NewSHA1(userIDNamespace, []byte(u.StudentCode))
}

// Apply registers all stations, then all users. It stops at the first failing registration.
func Apply(ctx context.Context, file File, handlers Handlers, now time.Time) (Result, error) {
	var result Result

	for _, s := range file.Stations {
		available := s.Capacity
		if s.Available != nil {
			available = *s.Available
		}

		command := registerstation.BuildCommand(s.ID, s.Name, s.Location, s.Latitude, s.Longitude, s.Capacity, available, now)

		handled, err := handlers.RegisterStation.Handle(ctx, command)
		if err != nil {
			return result, fmt.Errorf("seeding station %s: %w", s.ID, err)
		}

		if handled.Idempotent {
			result.Unchanged++
			continue
		}

		result.StationsRegistered++
	}

	for _, u := range file.Users {
		command := registeruser.BuildCommand(u.UserID(), u.StudentCode, u.Name, u.Email, core.ParseDonationTier(u.Tier), now)

		handled, err := handlers.RegisterUser.Handle(ctx, command)
		if err != nil {
			return result, fmt.Errorf("seeding user %s: %w", u.StudentCode, err)
		}

		if handled.Idempotent {
			result.Unchanged++
			continue
		}

		result.UsersRegistered++
	}

	return result, nil
}
