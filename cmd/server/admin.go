package main

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rihanvyakoob07/authenflow-platform/internal/service"
)

// parseAdminArg splits "email:password:name".  The name is optional and
// may itself contain colons.
func parseAdminArg(arg string) (service.RegisterInput, error) {
	parts := strings.SplitN(arg, ":", 3)
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" || parts[1] == "" {
		return service.RegisterInput{}, errors.New(`expected "email:password[:name]"`)
	}
	in := service.RegisterInput{Email: strings.TrimSpace(parts[0]), Password: parts[1], Name: "Administrator"}
	if len(parts) == 3 && strings.TrimSpace(parts[2]) != "" {
		in.Name = strings.TrimSpace(parts[2])
	}
	return in, nil
}

func bootstrapAdmin(ctx context.Context, auth *service.AuthService, arg string, log logrus.FieldLogger) error {
	in, err := parseAdminArg(arg)
	if err != nil {
		return err
	}
	u, err := auth.EnsureAdmin(ctx, in)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("admin account ready")
	return nil
}
