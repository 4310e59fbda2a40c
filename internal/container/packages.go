package container

import "github.com/samber/do"

// ServerPackages registers everything cmd/server needs.
func ServerPackages(i *do.Injector, options *Options) {
	do.ProvideValue(i, options)
	LoggerPackage(i)
	RedisPackage(i)
	PostgresPackage(i)
	StorePackage(i)
	HealthPackage(i)
	RateLimitPackage(i)
	PublisherGroupPackage(i)
	SaverPackage(i)
	HTTPPackage(i)
}

// ConsumerPackages registers everything cmd/consumer needs.
func ConsumerPackages(i *do.Injector, options *Options) {
	do.ProvideValue(i, options)
	LoggerPackage(i)
	RedisPackage(i)
	ConsumerGroupPackage(i)
}
