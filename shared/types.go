package shared

type ServerConfig struct {
	HelmetGuard HelmetGuardConfig `mapstructure:"helmetguard" validate:"required"`
	Twilio      TwilioConfig      `mapstructure:"twilio"`
	Firebase    FirebaseConfig    `mapstructure:"firebase"`
	Google      GoogleConfig      `mapstructure:"google"`
}

type HelmetGuardConfig struct {
	Listener           ListenerConfig  `mapstructure:"listener" validate:"required"`
	EventLogPath       string          `mapstructure:"eventLogPath" validate:"required"`
	TimeZone           string          `mapstructure:"timeZone" validate:"required"`
	DefaultCountryCode string          `mapstructure:"defaultCountryCode" validate:"required,startswith=+"`
	Rider              RiderConfig     `mapstructure:"rider"`
	Contacts           []ContactConfig `mapstructure:"contacts" validate:"dive"`
}

type ListenerConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// RiderConfig is the profile used for alerts raised by the helmet feed,
// which only reports sensor readings.
type RiderConfig struct {
	Name       string `mapstructure:"name"`
	Phone      string `mapstructure:"phone"`
	BloodGroup string `mapstructure:"bloodGroup"`
	Vehicle    string `mapstructure:"vehicle"`
}

type ContactConfig struct {
	Name     string `mapstructure:"name" validate:"required"`
	Phone    string `mapstructure:"phone" validate:"required"`
	Relation string `mapstructure:"relation"`
}

type TwilioConfig struct {
	AccountSid        string `mapstructure:"accountSid"`
	AuthToken         string `mapstructure:"authToken"`
	SenderNumber      string `mapstructure:"senderNumber" validate:"required_with=AccountSid"`
	FallbackRecipient string `mapstructure:"fallbackRecipient"`
}

type FirebaseConfig struct {
	DatabaseURL string `mapstructure:"databaseURL" validate:"omitempty,url"`
	Credentials string `mapstructure:"credentials"`
	Path        string `mapstructure:"path"`
}

type GoogleConfig struct {
	ApplicationCredentials string        `mapstructure:"applicationCredentials"`
	Storage                StorageConfig `mapstructure:"storage"`
}

type StorageConfig struct {
	Bucket                 string `mapstructure:"bucket" validate:"required_with=EnableEventLogBackup"`
	Prefix                 string `mapstructure:"prefix"`
	EventLogBackupSchedule string `mapstructure:"eventLogBackupSchedule" validate:"required_with=EnableEventLogBackup"`
	EnableEventLogBackup   bool   `mapstructure:"enableEventLogBackup"`
}
