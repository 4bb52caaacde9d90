package fx

import "go.uber.org/fx"

// CoreModule is everything below the HTTP layer. The CLI runs on it alone.
var CoreModule = fx.Options(
	ConfigModule,
	ObservabilityModule,
	InfrastructureModule,
	DomainModule,
)

var AppModule = fx.Options(
	CoreModule,
	MiddlewareModule,
	RoutesModule,
	ServerModule,
	SchedulerModule,
)
