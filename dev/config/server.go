package config

// SERVER_YML is the server config used with --dev. Secrets come from the
// environment (or .env), e.g. TWILIO_SID, TWILIO_AUTH, TWILIO_PHONE.
const SERVER_YML = `
helmetguard:
  listener:
    port: 8000
  eventLogPath: "dev/database/event_logs.json"
  timeZone: "Asia/Kolkata"
  defaultCountryCode: "+91"
  rider:
    name: "Dev Rider"
    phone: "9000000000"
    bloodGroup: "O+"
    vehicle: "KA01AB1234"
  contacts:

twilio:
  accountSid:
  authToken:
  senderNumber:
  fallbackRecipient:

firebase:
  databaseURL:
  credentials:
  path: "helmet"

google:
  storage:
    bucket: "helmetguard"
    prefix: "helmetguard-dev"
    eventLogBackupSchedule: "*/30 * * * *"
    enableEventLogBackup: false
  applicationCredentials:
`
