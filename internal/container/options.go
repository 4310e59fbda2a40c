package container

import "time"

// Options configures the server. Tags drive the humacli flags.
type Options struct {
	Port           int    `default:"8888"           help:"Port to listen on"                                            short:"p"`
	RedisAddr      string `default:"localhost:6379" help:"Redis server address"                                         short:"r"`
	DatabaseURL    string `default:""               help:"Postgres URL for the album index; empty keeps images on disk" short:"d"`
	LogFormat      string `default:"console"        help:"Log format: console or json"`
	DataDir        string `default:"./data"         help:"Directory for downloads and the file album"`
	StoreBackend   string `default:"redis"          help:"Grant and quota store: redis or memory"`
	MaxImageBytes  int    `default:"20971520"       help:"Largest image accepted, in bytes"`
	FetchTimeoutMs int    `default:"15000"          help:"Image download timeout in milliseconds"`
	FetchPrivate   bool   `default:"false"          help:"Allow image downloads from loopback and private addresses"`
	ThrottleMs     int    `default:"500"            help:"Per-session save throttle window in milliseconds"`
	QuotaLimit     int    `default:"120"            help:"Requests per client within the quota window"`
	QuotaWindowS   int    `default:"60"             help:"Quota window in seconds"`
	DigestWindowMs int    `default:"2000"           help:"Quiet period before a session digest is logged, in milliseconds"`
	ConsumerGroup  string `default:"albumkit"       help:"Redis stream consumer group"`
}

func (o *Options) throttleWindow() time.Duration {
	return time.Duration(o.ThrottleMs) * time.Millisecond
}

func (o *Options) fetchTimeout() time.Duration {
	return time.Duration(o.FetchTimeoutMs) * time.Millisecond
}

func (o *Options) quotaWindow() time.Duration {
	return time.Duration(o.QuotaWindowS) * time.Second
}

func (o *Options) digestWindow() time.Duration {
	return time.Duration(o.DigestWindowMs) * time.Millisecond
}

// pruneInterval is how often idle guards are dropped.
const pruneInterval = time.Minute
