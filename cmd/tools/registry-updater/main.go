// cmd/tools/registry-updater/main.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"finda-workers/pkg/registry"
)

var registryPath string

var rootCmd = &cobra.Command{
	Use:   "registry-updater",
	Short: "Maintain the activity registry used to validate job input",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&registryPath, "path", "p", "configs/activity-registry.json", "Path to registry file")

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a new activity to the registry",
		RunE:  runAdd,
	}
	add.Flags().String("id", "", "Activity ID (e.g., search-products)")
	add.Flags().String("displayName", "", "Display name")
	add.Flags().String("description", "", "Description")
	add.Flags().String("category", "", "Category (conversation, shopping)")
	add.Flags().String("taskType", "", "Zeebe task type; defaults to the ID")
	add.Flags().String("version", "1.0.0", "Version")
	add.Flags().String("status", "planned", "Implementation status (planned, in-progress, implemented)")
	add.Flags().String("timeout", "10s", "Job timeout")
	for _, f := range []string{"id", "displayName", "category"} {
		_ = add.MarkFlagRequired(f)
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Update a field of an existing activity",
		RunE:  runUpdate,
	}
	update.Flags().String("id", "", "Activity ID to update")
	update.Flags().String("field", "", "Field to update (status, version, displayName, description, category, timeout, retries)")
	update.Flags().String("value", "", "New value for the field")
	for _, f := range []string{"id", "field", "value"} {
		_ = update.MarkFlagRequired(f)
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate the registry file",
		RunE:  runValidate,
	}

	rootCmd.AddCommand(add, update, validate)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAdd(cmd *cobra.Command, _ []string) error {
	flag := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}

	reg, err := registry.LoadRegistry(registryPath)
	switch {
	case os.IsNotExist(err):
		reg = &registry.ActivityRegistry{Version: "1.0.0"}
	case err != nil:
		return fmt.Errorf("load registry: %w", err)
	}

	id := flag("id")
	for _, existing := range reg.Activities {
		if existing.ID == id {
			return fmt.Errorf("activity with ID %s already exists", id)
		}
	}

	taskType := flag("taskType")
	if taskType == "" {
		taskType = id
	}
	reg.Upsert(registry.Activity{
		ID:                   id,
		DisplayName:          flag("displayName"),
		Description:          flag("description"),
		Category:             flag("category"),
		Version:              flag("version"),
		TaskType:             taskType,
		ImplementationStatus: registry.Status(flag("status")),
		InputSchema:          map[string]interface{}{"type": "object"},
		Timeout:              flag("timeout"),
	}, time.Now())

	if err := reg.Validate(); err != nil {
		return err
	}
	if err := reg.Save(registryPath); err != nil {
		return err
	}
	fmt.Printf("Added activity: %s\n", id)
	return nil
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	id, _ := cmd.Flags().GetString("id")
	field, _ := cmd.Flags().GetString("field")
	value, _ := cmd.Flags().GetString("value")

	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	var activity *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == id {
			activity = &reg.Activities[i]
			break
		}
	}
	if activity == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		activity.ImplementationStatus = registry.Status(value)
	case "version":
		activity.Version = value
	case "displayName":
		activity.DisplayName = value
	case "description":
		activity.Description = value
	case "category":
		activity.Category = value
	case "timeout":
		activity.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		activity.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.Upsert(*activity, time.Now())
	if err := reg.Validate(); err != nil {
		return err
	}
	if err := reg.Save(registryPath); err != nil {
		return err
	}
	fmt.Printf("Updated activity %s, field %s to %s\n", id, field, value)
	return nil
}

func runValidate(_ *cobra.Command, _ []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}
