package main

import (
	"context"
	"fmt"
	"os"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/drivers/database"
	"telemed-service/internal/app/drivers/logger"
	"telemed-service/internal/app/models"
	"telemed-service/internal/app/services/core/settings"
	"telemed-service/internal/app/services/shared/jwtmanager"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type migrationContext struct {
	driverConfig   *config.DriverConfig
	internalConfig *config.InternalConfig
	log            *logrus.Logger
	timeout        time.Duration
}

func main() {
	mc := &migrationContext{
		driverConfig:   config.NewDriverConfig(),
		internalConfig: config.NewInternalConfig(),
	}
	mc.log = logger.NewLogrusLogger(mc.driverConfig, mc.internalConfig)

	if err := newRootCommand(mc).Execute(); err != nil {
		mc.log.WithError(err).Error("migration failed")
		os.Exit(1)
	}
}

func newRootCommand(mc *migrationContext) *cobra.Command {
	root := &cobra.Command{
		Use:           "migration",
		Short:         "Prepare the telemed database: indexes and platform settings",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mc.withMongo(func(ctx context.Context, client *mongo.Client) error {
				if err := mc.ensureIndexes(ctx, client); err != nil {
					return err
				}
				return mc.seedSettings(ctx, client)
			})
		},
	}
	root.PersistentFlags().DurationVar(&mc.timeout, "timeout", 30*time.Second, "deadline for the whole run")

	root.AddCommand(
		&cobra.Command{
			Use:   "indexes",
			Short: "Create the mongo indexes",
			RunE: func(cmd *cobra.Command, args []string) error {
				return mc.withMongo(mc.ensureIndexes)
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert the default commission rates when none are stored",
			RunE: func(cmd *cobra.Command, args []string) error {
				return mc.withMongo(mc.seedSettings)
			},
		},
		newTokenCommand(mc),
	)
	return root
}

func newTokenCommand(mc *migrationContext) *cobra.Command {
	var principal models.Principal
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for a principal",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := jwtmanager.NewJWTManager(mc.internalConfig, zap.NewNop())
			if err != nil {
				return err
			}
			token, err := manager.CreateToken(cmd.Context(), principal)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&principal.ID, "id", "", "principal id")
	cmd.Flags().StringVar(&principal.Role, "role", "", "patient, doctor or admin")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func (mc *migrationContext) withMongo(run func(ctx context.Context, client *mongo.Client) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), mc.timeout)
	defer cancel()

	client := database.NewMongoDB(mc.driverConfig, zap.NewNop())
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			mc.log.WithError(err).Warn("failed to disconnect from mongo")
		}
	}()
	return run(ctx, client)
}

func (mc *migrationContext) ensureIndexes(ctx context.Context, client *mongo.Client) error {
	created, err := database.EnsureIndexes(ctx, client, mc.driverConfig.MongoDB.DbName)
	if err != nil {
		return err
	}
	for collection, names := range created {
		mc.log.WithFields(logrus.Fields{
			"collection": collection,
			"indexes":    names,
		}).Info("indexes ensured")
	}
	return nil
}

func (mc *migrationContext) seedSettings(ctx context.Context, client *mongo.Client) error {
	repository := settings.NewPlatformSettingsMongoRepository(client, mc.driverConfig.MongoDB.DbName)
	current, inserted, err := settings.SeedDefaults(ctx, repository, mc.internalConfig.Finance, time.Now())
	if err != nil {
		return err
	}

	entry := mc.log.WithFields(logrus.Fields{
		"patient_commission": current.PatientCommission,
		"doctor_commission":  current.DoctorCommission,
	})
	if inserted {
		entry.Info("platform settings seeded")
	} else {
		entry.Info("platform settings already present, left unchanged")
	}
	return nil
}
