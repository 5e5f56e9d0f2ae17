package common

const (
	// KeyAlertCooldown suppresses re-firing an alert setting: setting ID, symbol.
	KeyAlertCooldown = "alert_cooldown:%d:%s"
	// KeyFuturesSnapshot caches the latest tick per symbol.
	KeyFuturesSnapshot = "futures_snapshot:%s"
	// KeyPrediction caches the latest AI prediction per symbol.
	KeyPrediction = "prediction:%s"
)
