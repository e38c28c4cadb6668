package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func init() {
	godotenv.Load()
}

// newViper reads configuration from the environment only. A key such as
// "mongodb.db_name" is looked up as MONGODB_DB_NAME.
func newViper(defaults map[string]interface{}) *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

func NewDriverConfig() *DriverConfig {
	v := newViper(map[string]interface{}{
		"mongodb.host":                 "localhost",
		"mongodb.port":                 "27017",
		"mongodb.username":             "defaultUsername",
		"mongodb.password":             "defaultPassword",
		"mongodb.db_name":              "telemed",
		"redis.host":                   "localhost",
		"redis.port":                   "6379",
		"redis.password":               "",
		"logger.level":                 "debug",
		"logger.output_filename":       "logger.log",
		"logger.output_error_filename": "logger_error.log",
		"rabbitmq.host":                "localhost",
		"rabbitmq.port":                "5672",
		"rabbitmq.username":            "guest",
		"rabbitmq.password":            "guest",
		"minio.host":                   "localhost",
		"minio.port":                   "9000",
		"minio.username":               "minioadmin",
		"minio.password":               "minioadmin",
		"minio.use_ssl":                false,
	})

	driverConfig := new(DriverConfig)
	if err := v.Unmarshal(driverConfig); err != nil {
		log.Fatalf("Error loading driver config: %v", err)
	}
	return driverConfig
}

func NewInternalConfig() *InternalConfig {
	v := newViper(map[string]interface{}{
		"app.env":                                    "development",
		"app.port":                                   ":8080",
		"app.version":                                "v1",
		"app.timezone":                               "Asia/Kolkata",
		"app.endpoint_prefix":                        "api",
		"app.max_requests":                           10,
		"app.shutdown_timeout_in_seconds":            10,
		"app.request_timeout_in_seconds":             10,
		"app.money_requests_per_minute":              20,
		"app.money_requests_block_minutes":           5,
		"jwt.secret":                                 "anyjwt",
		"payment_gateway.base_url":                   "https://api.razorpay.com/v1",
		"payment_gateway.key_id":                     "",
		"payment_gateway.key_secret":                 "",
		"payment_gateway.request_timeout_in_seconds": 8,
		"finance.cancellation_fee":                   50.0,
		"finance.gateway_fee_pct":                    2.0,
		"finance.gst_on_gateway_fee_pct":             18.0,
		"finance.minimum_withdrawal":                 1000.0,
		"finance.default_patient_commission":         30.0,
		"finance.default_doctor_commission":          10.0,
		"finance.settings_cache_ttl_in_seconds":      60,
		"notification.queue":                         "notifications",
		"notification.publish_max_retries":           3,
		"invoice.bucket_name":                        "invoices",
		"invoice.public_url":                         "",
		"locker.refund_lock_ttl_in_seconds":          30,
		"locker.withdrawal_lock_ttl_in_seconds":      15,
	})

	internalConfig := new(InternalConfig)
	if err := v.Unmarshal(internalConfig); err != nil {
		log.Fatalf("Error loading internal config: %v", err)
	}
	return internalConfig
}
