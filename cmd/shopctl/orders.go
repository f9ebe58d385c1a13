package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/example/foodshop/pkg/discovery"
	"github.com/example/foodshop/pkg/grpc"
	"github.com/example/foodshop/pkg/models"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and update orders through the order service",
	}
	cmd.AddCommand(ordersListCmd())
	cmd.AddCommand(ordersSetStatusCmd())
	return cmd
}

func ordersListCmd() *cobra.Command {
	var status string
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrderClient(cmd.Context(), func(ctx context.Context, client grpc.OrderServiceClient) error {
				resp, err := client.ListOrders(ctx, &grpc.ListOrdersRequest{Status: status, Page: page, PageSize: pageSize})
				if err != nil {
					return err
				}
				renderOrders(cmd.OutOrStdout(), resp.Orders)
				fmt.Fprintf(cmd.OutOrStdout(), "%d of %d orders\n", len(resp.Orders), resp.Total)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	cmd.Flags().IntVarP(&pageSize, "limit", "n", 20, "Orders per page")
	return cmd
}

func ordersSetStatusCmd() *cobra.Command {
	var carrier, tracking string

	cmd := &cobra.Command{
		Use:   "set-status [order-id] [status]",
		Short: "Move an order to its next status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrderClient(cmd.Context(), func(ctx context.Context, client grpc.OrderServiceClient) error {
				resp, err := client.UpdateOrderStatus(ctx, &grpc.UpdateOrderStatusRequest{
					OrderID:        args[0],
					Status:         args[1],
					Carrier:        carrier,
					TrackingNumber: tracking,
					Actor:          "shopctl",
				})
				if err != nil {
					return err
				}
				renderOrders(cmd.OutOrStdout(), []models.Order{*resp.Order})
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&carrier, "carrier", "", "Carrier name (shipped only)")
	cmd.Flags().StringVar(&tracking, "tracking", "", "Tracking number (shipped only)")
	return cmd
}

func withOrderClient(parent context.Context, fn func(ctx context.Context, client grpc.OrderServiceClient) error) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if parent == nil {
		parent = context.Background()
	}

	var sd *discovery.ServiceDiscovery
	if len(cfg.Etcd.Endpoints) > 0 {
		sd, err = discovery.NewServiceDiscovery(&cfg.Etcd, log)
		if err != nil {
			log.Warn("Service discovery unavailable", zap.Error(err))
			sd = nil
		} else {
			defer sd.Close()
		}
	}

	fallback := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	manager := grpc.NewClientManager(cfg.Server.Name, fallback, log, sd)
	if err := manager.Connect(parent); err != nil {
		return err
	}
	defer manager.Close()

	ctx, cancel := context.WithTimeout(parent, 10*time.Second)
	defer cancel()
	return fn(ctx, manager.OrderClient())
}

func renderOrders(w io.Writer, orders []models.Order) {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Status", "Customer", "Total", "Payment", "Tracking", "Created")
	for _, o := range orders {
		table.Append([]string{
			o.ID,
			o.Status.String(),
			o.CustomerName,
			o.Total.StringFixed(2),
			string(o.PaymentMethod),
			o.TrackingNumber,
			o.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()
}
