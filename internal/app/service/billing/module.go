package billing

import "go.uber.org/fx"

// Module exposes the billing service via Fx and hooks the cron schedule
// into the app lifecycle.
var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(RegisterCron),
)
