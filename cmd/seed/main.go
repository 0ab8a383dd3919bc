package main

import (
	"log"
	"log/slog"

	"codema-service/internal/config"
	"codema-service/internal/database"
	"codema-service/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()

	slog.Info("Starting database seeding...")

	db, err := database.NewPostgresConnection(cfg.Database.URI)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	slog.Info("Database connection established")

	slog.Info("Creating portal accounts...")

	accounts := []struct {
		name  string
		email string
		role  string
	}{
		{"Administrador", "admin@codema.local", models.RoleAdmin},
		{"Presidente do Conselho", "presidente@codema.local", models.RolePresidente},
		{"Secretaria Executiva", "secretaria@codema.local", models.RoleSecretario},
	}

	hashed, _ := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)
	for _, acc := range accounts {
		user := &models.User{
			Name:     acc.name,
			Email:    acc.email,
			Password: string(hashed),
			Role:     acc.role,
			IsActive: true,
		}
		if err := db.Where("email = ?", acc.email).FirstOrCreate(user).Error; err != nil {
			slog.Warn("Account might already exist", "email", acc.email, "error", err)
		} else {
			slog.Info("Created account", "email", acc.email, "role", acc.role)
		}
	}

	slog.Info("Creating demo councilor roster...")

	councilors := []struct {
		name     string
		email    string
		entidade string
		titular  bool
	}{
		{"Maria Souza", "maria@codema.local", "Secretaria de Meio Ambiente", true},
		{"Joao Lima", "joao@codema.local", "Associacao Comercial", true},
		{"Ana Pereira", "ana@codema.local", "Sindicato Rural", true},
		{"Carlos Mendes", "carlos@codema.local", "ONG Verde Vivo", true},
		{"Beatriz Rocha", "beatriz@codema.local", "Camara Municipal", false},
	}

	for _, c := range councilors {
		user := &models.User{
			Name:     c.name,
			Email:    c.email,
			Password: string(hashed),
			Role:     models.RoleConselheiro,
			IsActive: true,
		}
		if err := db.Where("email = ?", c.email).FirstOrCreate(user).Error; err != nil {
			slog.Warn("Account might already exist", "email", c.email, "error", err)
			continue
		}
		councilor := &models.Councilor{
			UserID:   user.ID,
			Name:     c.name,
			Cargo:    "Conselheiro",
			Entidade: c.entidade,
			Titular:  c.titular,
			Ativo:    true,
		}
		if err := db.Where("user_id = ?", user.ID).FirstOrCreate(councilor).Error; err != nil {
			slog.Warn("Councilor might already exist", "user_id", user.ID, "error", err)
		} else {
			slog.Info("Created councilor", "name", c.name, "entidade", c.entidade)
		}
	}

	slog.Info("Database seeding completed!")
}
