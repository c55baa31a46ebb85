package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/menuboard/internal/auth"
	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/repositories"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/urfave/cli/v3"
)

// UserAdd creates a kitchen staff account for the local provider.
func (r *Runner) UserAdd(ctx context.Context, cmd *cli.Command) error {
	email := cmd.StringArg("email")
	if email == "" {
		return fmt.Errorf("%w: email", shared.ErrMissingArgument)
	}

	password, err := r.readPassword(cmd.String("password"), "Password: ")
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	users := repositories.NewUserRepository(db)
	if _, err := users.GetByEmail(email); err == nil {
		return fmt.Errorf("%w: user %s already exists", shared.ErrInvalidArgument, email)
	} else if !errors.Is(err, shared.ErrUserNotFound) {
		return err
	}

	user := models.NewUser(0, email, hash)
	if err := users.Create(user); err != nil {
		return err
	}

	r.logger.Info("user created", "email", user.Email(), "id", user.ID())
	return r.writePlain("Created %s\n", user.Email())
}

// UserPasswd replaces the password of an existing account.
func (r *Runner) UserPasswd(ctx context.Context, cmd *cli.Command) error {
	email := cmd.StringArg("email")
	if email == "" {
		return fmt.Errorf("%w: email", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	users := repositories.NewUserRepository(db)
	user, err := users.GetByEmail(email)
	if err != nil {
		return err
	}

	password, err := r.readPassword(cmd.String("password"), "New password: ")
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	user.SetPasswordHash(hash)
	if err := users.Update(user); err != nil {
		return err
	}

	r.logger.Info("password changed", "email", user.Email())
	return r.writePlain("Password changed for %s\n", user.Email())
}

// UserRemove deletes an account. Sessions it already holds stay valid until they expire.
func (r *Runner) UserRemove(ctx context.Context, cmd *cli.Command) error {
	email := cmd.StringArg("email")
	if email == "" {
		return fmt.Errorf("%w: email", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	users := repositories.NewUserRepository(db)
	user, err := users.GetByEmail(email)
	if err != nil {
		return err
	}
	if err := users.Delete(user.ID()); err != nil {
		return err
	}

	r.logger.Info("user removed", "email", user.Email())
	return r.writePlain("Removed %s\n", user.Email())
}

// UserList prints every account.
func (r *Runner) UserList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	users, err := repositories.NewUserRepository(db).List(nil)
	if err != nil {
		return err
	}

	if len(users) == 0 {
		return r.writePlain("No users. Create one with 'menuboard user add <email>'.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Users (%d)", len(users)))
	for _, u := range users {
		r.writePlain("%3d. %s (created %s)\n", u.Sequence(), u.Email(), u.CreatedAt().Format("2006-01-02"))
	}
	return nil
}
