package config

type (
	DriverConfig struct {
		MongoDB  MongoDB  `mapstructure:"mongodb"`
		Redis    Redis    `mapstructure:"redis"`
		Logger   Logger   `mapstructure:"logger"`
		RabbitMQ RabbitMQ `mapstructure:"rabbitmq"`
		Minio    Minio    `mapstructure:"minio"`
	}
	MongoDB struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		DbName   string `mapstructure:"db_name"`
	}
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
	}
	Logger struct {
		Level               string `mapstructure:"level"`
		OutputFileName      string `mapstructure:"output_filename"`
		OutputErrorFileName string `mapstructure:"output_error_filename"`
	}
	RabbitMQ struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
	}
	Minio struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		UseSSL   bool   `mapstructure:"use_ssl"`
	}
)

type InternalConfig struct {
	App            App               `mapstructure:"app"`
	JWT            AppJWT            `mapstructure:"jwt"`
	PaymentGateway AppPaymentGateway `mapstructure:"payment_gateway"`
	Finance        AppFinance        `mapstructure:"finance"`
	RabbitMQ       AppRabbitMQ       `mapstructure:"notification"`
	Minio          AppMinio          `mapstructure:"invoice"`
	Locker         AppLocker         `mapstructure:"locker"`
}

type App struct {
	Env                       string `mapstructure:"env"`
	Port                      string `mapstructure:"port"`
	Version                   string `mapstructure:"version"`
	Timezone                  string `mapstructure:"timezone"`
	EndpointPrefix            string `mapstructure:"endpoint_prefix"`
	MaxRequests               int    `mapstructure:"max_requests"`
	ShutdownTimeoutInSeconds  int    `mapstructure:"shutdown_timeout_in_seconds"`
	RequestTimeoutInSeconds   int    `mapstructure:"request_timeout_in_seconds"`
	MoneyRequestsPerMinute    int    `mapstructure:"money_requests_per_minute"`
	MoneyRequestsBlockMinutes int    `mapstructure:"money_requests_block_minutes"`
}

type AppJWT struct {
	Secret string `mapstructure:"secret"`
}

type AppPaymentGateway struct {
	BaseUrl                 string `mapstructure:"base_url"`
	KeyID                   string `mapstructure:"key_id"`
	KeySecret               string `mapstructure:"key_secret"`
	RequestTimeoutInSeconds int    `mapstructure:"request_timeout_in_seconds"`
}

type AppFinance struct {
	CancellationFee           float64 `mapstructure:"cancellation_fee"`
	GatewayFeePct             float64 `mapstructure:"gateway_fee_pct"`
	GSTOnGatewayFeePct        float64 `mapstructure:"gst_on_gateway_fee_pct"`
	MinimumWithdrawal         float64 `mapstructure:"minimum_withdrawal"`
	DefaultPatientCommission  float64 `mapstructure:"default_patient_commission"`
	DefaultDoctorCommission   float64 `mapstructure:"default_doctor_commission"`
	SettingsCacheTTLInSeconds int     `mapstructure:"settings_cache_ttl_in_seconds"`
}

type AppRabbitMQ struct {
	Queue             string `mapstructure:"queue"`
	PublishMaxRetries uint   `mapstructure:"publish_max_retries"`
}

type AppMinio struct {
	BucketName string `mapstructure:"bucket_name"`
	PublicUrl  string `mapstructure:"public_url"`
}

type AppLocker struct {
	RefundLockTTLInSeconds     int `mapstructure:"refund_lock_ttl_in_seconds"`
	WithdrawalLockTTLInSeconds int `mapstructure:"withdrawal_lock_ttl_in_seconds"`
}
