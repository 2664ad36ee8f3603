package main

import (
	"fmt"
	"log"
	"os"

	"speakup/backend/internal/models"
	"speakup/backend/internal/storage"
	"speakup/backend/internal/trust"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Operator CLI. Commands act through the same storage layer and trust
// engine as the service; identity lookups still go through the audited
// reveal path, recorded under the admin-cli viewer id.

const cliViewerID = "admin-cli"

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI
	trustEngine := trust.NewEngine(storageSvc)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "seed-departments":
		departments := []models.Department{
			{Category: "academics", Name: "Academic Affairs"},
			{Category: "facilities", Name: "Facilities & Maintenance"},
			{Category: "finance", Name: "Finance & Billing"},
			{Category: "harassment", Name: "Harassment & Safety"},
			{Category: "it", Name: "IT Services"},
		}
		if err := storageSvc.SeedDepartments(departments); err != nil {
			log.Fatalf("Error seeding departments: %v", err)
		}
		fmt.Println("Departments seeded.")

	case "validate":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin validate <complaint_id>")
			os.Exit(1)
		}
		if err := validateComplaint(storageSvc, trustEngine, os.Args[2]); err != nil {
			log.Fatalf("Error validating complaint: %v", err)
		}
		fmt.Printf("Complaint %s has been validated.\n", os.Args[2])

	case "dismiss":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin dismiss <complaint_id>")
			os.Exit(1)
		}
		if err := dismissComplaint(storageSvc, trustEngine, os.Args[2]); err != nil {
			log.Fatalf("Error dismissing complaint: %v", err)
		}
		fmt.Printf("Complaint %s has been dismissed as false.\n", os.Args[2])

	case "trust":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin trust <user_id> <action>")
			os.Exit(1)
		}
		result, err := trustEngine.Apply(os.Args[2], os.Args[3], nil)
		if err != nil {
			log.Fatalf("Error applying trust action: %v", err)
		}
		fmt.Printf("Trust score for %s: %d -> %d (%+d)\n", os.Args[2], result.OldScore, result.NewScore, result.Change)

	case "promote":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin promote <user_id> <role>")
			os.Exit(1)
		}
		if err := promoteUser(storageSvc, os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("Error promoting user: %v", err)
		}
		fmt.Printf("User %s is now a %s.\n", os.Args[2], os.Args[3])

	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func mappedSubmitter(s storage.Storage, complaintID string) (string, error) {
	submitterID, err := s.RevealSubmitter(complaintID, cliViewerID)
	if err != nil {
		return "", err
	}
	if submitterID == "" {
		return "", fmt.Errorf("complaint %s not found", complaintID)
	}
	return submitterID, nil
}

func validateComplaint(s storage.Storage, e *trust.Engine, complaintID string) error {
	submitterID, err := mappedSubmitter(s, complaintID)
	if err != nil {
		return err
	}

	prior, err := s.CountTrustActions(submitterID, trust.ActionValidated)
	if err != nil {
		return err
	}

	if _, err := e.Apply(submitterID, trust.ActionValidated, &complaintID); err != nil {
		return err
	}
	if prior > 0 {
		if _, err := e.Apply(submitterID, trust.ActionRepeatedValid, &complaintID); err != nil {
			return err
		}
	}
	return nil
}

func dismissComplaint(s storage.Storage, e *trust.Engine, complaintID string) error {
	submitterID, err := mappedSubmitter(s, complaintID)
	if err != nil {
		return err
	}
	_, err = e.Apply(submitterID, trust.ActionFalseComplaint, &complaintID)
	return err
}

func promoteUser(s storage.Storage, userID, role string) error {
	if role != models.RoleSubmitter && role != models.RoleHandler && role != models.RoleAuditor {
		return fmt.Errorf("unknown role %q", role)
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %s not found", userID)
	}

	user.Role = role
	return s.SaveUser(user)
}
