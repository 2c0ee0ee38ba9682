// maintops is a small operations CLI over the maintenance work-order API:
// sign in, inspect the session, list work orders and online users.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sstcp-ops/maintops-go/client"
	"github.com/sstcp-ops/maintops-go/config"
	"github.com/sstcp-ops/maintops-go/guard"
	"github.com/sstcp-ops/maintops-go/policy"
	"github.com/sstcp-ops/maintops-go/session"
	"github.com/sstcp-ops/maintops-go/storage"
	"github.com/sstcp-ops/maintops-go/types"
)

// app holds the explicitly wired object graph: storage -> session ->
// client -> guard. No package-level mutable state.
type app struct {
	cfg     *config.Config
	session *session.Store
	api     *client.Client
	policy  *policy.Policy
	guard   *guard.Guard
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	var store storage.Store
	if cfg.Session.StoragePath != "" {
		fileStore, err := storage.NewFile(cfg.Session.StoragePath, cfg.Session.StorageSecret)
		if err != nil {
			return nil, err
		}
		store = fileStore
	} else {
		store = storage.NewMemory()
	}

	sessionStore := session.NewStore(session.Config{
		Storage:           store,
		Device:            cfg.Session.Variant,
		HeartbeatInterval: cfg.Session.HeartbeatInterval,
	})

	api := client.NewClient(&client.Config{
		BaseURL: cfg.API.BaseURL,
		Session: sessionStore,
		Timeout: cfg.API.Timeout,
		Debug:   cfg.API.Debug,
		OnSessionExpired: func() {
			fmt.Fprintln(os.Stderr, "session expired, please log in again")
		},
	})
	sessionStore.SetPresence(api.Online)

	pol := policy.New(policy.Variant(cfg.Session.Variant))

	return &app{
		cfg:     cfg,
		session: sessionStore,
		api:     api,
		policy:  pol,
		guard: guard.New(guard.Config{
			Policy:  pol,
			Session: sessionStore,
			Rules: []guard.RouteRule{
				{Name: "statistics", RequiresAuth: true, Permission: policy.PermViewStatistics},
				{Name: "personnel", RequiresAuth: true, Permission: policy.PermViewPersonnel},
				{Name: "online", RequiresAuth: true},
				{Name: "workorders", RequiresAuth: true},
			},
		}),
	}, nil
}

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "maintops",
		Short: "Client for the SSTCP maintenance work-order system",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./maintops.yaml)")

	root.AddCommand(
		loginCmd(&configPath),
		logoutCmd(&configPath),
		whoamiCmd(&configPath),
		workOrdersCmd(&configPath),
		onlineCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func withApp(configPath *string, run func(ctx context.Context, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(*configPath)
		if err != nil {
			return err
		}
		defer a.session.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()
		return run(ctx, a)
	}
}

func loginCmd(configPath *string) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session locally",
		RunE: withApp(configPath, func(ctx context.Context, a *app) error {
			result, err := a.api.Auth.Login(ctx, username, password)
			if err != nil {
				return err
			}
			fmt.Printf("signed in as %s (%s)\n", result.User.Name, result.User.Role)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "login name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: withApp(configPath, func(ctx context.Context, a *app) error {
			a.api.Auth.Logout()
			fmt.Println("signed out")
			return nil
		}),
	}
}

func whoamiCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity and its capabilities",
		RunE: withApp(configPath, func(ctx context.Context, a *app) error {
			user := a.session.User()
			if user == nil {
				fmt.Println("not signed in")
				return nil
			}
			role := policy.Role(user.Role)
			fmt.Printf("%s <%s> role=%s level=%d\n", user.Name, user.Department, user.Role, a.policy.RoleLevel(role))
			for _, perm := range a.policy.AllowedPermissions(role) {
				fmt.Printf("  %s\n", perm)
			}
			return nil
		}),
	}
}

func workOrdersCmd(configPath *string) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "workorders",
		Short: "List work plans",
		RunE: withApp(configPath, func(ctx context.Context, a *app) error {
			if decision := a.guard.Check("workorders"); !decision.Allowed {
				return fmt.Errorf("not allowed, redirecting to %s", decision.RedirectTo)
			}
			list, err := a.api.WorkOrders.ListWorkPlans(ctx, &types.WorkOrderListOptions{Status: status})
			if err != nil {
				return err
			}
			for _, order := range list.Items {
				fmt.Printf("%-12s %-20s %-12s %s\n", order.OrderNumber, order.Title, order.Status, order.PlannedDate)
			}
			fmt.Printf("%d of %d orders\n", len(list.Items), list.Total)
			return nil
		}),
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	return cmd
}

func onlineCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "online",
		Short: "Show who is online",
		RunE: withApp(configPath, func(ctx context.Context, a *app) error {
			stats, err := a.api.Online.Statistics(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("online: %d (pc %d, h5 %d)\n", stats.Total, stats.PCCount, stats.H5Count)
			for _, u := range append(stats.PCUsers, stats.H5Users...) {
				fmt.Printf("  %-16s %-20s %s\n", u.UserName, u.Role, u.DeviceType)
			}
			return nil
		}),
	}
}
