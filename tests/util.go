package testutil

import (
	"context"
	"net/mail"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shkola/core"
	"github.com/trezcool/shkola/core/user"
)

// Password satisfies the password policy.
const Password = "Passw0rdX"

// NopLogger discards everything.
type NopLogger struct{}

var _ core.Logger = NopLogger{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

func NewConfig() *core.Config {
	return &core.Config{
		AppName:          "Shkola",
		BaseURL:          "http://localhost:8000",
		Env:              "TEST",
		TestMode:         true,
		SecretKey:        "test-secret-key-test-secret-key!",
		DefaultLocale:    core.LocaleUK,
		DefaultFromEmail: mail.Address{Name: "Shkola", Address: "noreply@shkola.com"},
		Server:           core.ServerConfig{DisableReqLogs: true},
		Database:         core.DatabaseConfig{Engine: "memory"},
		Storage:          core.StorageConfig{UploadDir: "uploads", StaticDir: "static"},
	}
}

func NewValidator(t *testing.T) (*validator.Validate, *ut.UniversalTranslator) {
	t.Helper()
	uni, err := core.NewTranslator()
	if err != nil {
		t.Fatalf("NewTranslator() failed: %v", err)
	}
	validate := validator.New()
	if err = core.InitValidators(validate, uni); err != nil {
		t.Fatalf("InitValidators() failed: %v", err)
	}
	return validate, uni
}

func CreateUser(t *testing.T, repo user.Repository, first, last, email, pwd string, role user.Role) user.User {
	t.Helper()
	usr := user.User{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Role:      role,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}
