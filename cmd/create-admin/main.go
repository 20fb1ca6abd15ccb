package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/edumaster/edumaster-web/internal/config"
	"github.com/edumaster/edumaster-web/internal/edumaster"
	"github.com/edumaster/edumaster-web/internal/logger"
)

// create-admin provisions an admin account on the remote EduMaster API.
// It logs in as a super admin first, since the create-admin endpoint
// requires one.
func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	api := edumaster.New(cfg.APIBaseURL, cfg.APITimeout, log)

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin Account ===")

	// ─── Super Admin Login ─────────────────────────────────────────────
	fmt.Print("Super admin email: ")
	adminEmail, _ := reader.ReadString('\n')
	adminEmail = strings.TrimSpace(adminEmail)
	if adminEmail == "" {
		fmt.Println("Error: email is required")
		return
	}

	fmt.Print("Super admin password: ")
	byteAdminPassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println()

	result, err := api.Login(ctx, edumaster.LoginRequest{
		Email:    adminEmail,
		Password: string(byteAdminPassword),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Login failed")
	}
	authed := api.WithToken(result.Token)

	// ─── New Admin Input ───────────────────────────────────────────────
	fmt.Print("New admin full name: ")
	fullName, _ := reader.ReadString('\n')
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		fmt.Println("Error: full name is required")
		return
	}

	fmt.Print("New admin email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: email is required")
		return
	}

	fmt.Print("New admin phone number (optional): ")
	phone, _ := reader.ReadString('\n')
	phone = strings.TrimSpace(phone)

	fmt.Print("New admin password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println()
	if len(password) < 6 {
		fmt.Println("Error: password must be at least 6 characters")
		return
	}

	// ─── Create Admin ──────────────────────────────────────────────────
	err = authed.CreateAdmin(ctx, edumaster.CreateAdminRequest{
		FullName:    fullName,
		Email:       email,
		Password:    password,
		CPassword:   password,
		PhoneNumber: phone,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created\n", fullName, email)
}
