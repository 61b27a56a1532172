package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/govtwool/govtwool-backend/core/config"
)

var (
	envFile string
	cfg     *config.Config
)

// flagKeys maps persistent flags onto their configuration keys. A flag set
// on the command line wins over the environment.
var flagKeys = map[string]string{
	"port":            "app_port",
	"debug":           "app_debug",
	"basic-auth":      "app_basic_auth",
	"base-path":       "app_base_path",
	"trusted-proxies": "app_trusted_proxies",
	"db-driver":       "db_driver",
	"db-host":         "db_host",
	"db-port":         "db_port",
	"db-user":         "db_user",
	"db-password":     "db_password",
	"db-name":         "db_name",
	"db-schema":       "db_schema",
	"cache":           "cache_enabled",
	"cache-max":       "cache_max_entries",
	"valkey":          "valkey_enabled",
	"valkey-address":  "valkey_address",
	"warmup":          "warmup_enabled",
	"warmup-workers":  "warmup_workers",
}

var rootCmd = &cobra.Command{
	Use:   "govtwool",
	Short: "Cardano governance read API",
	Long: `Serves DReps, governance actions, stake pools and committee data indexed by Yaci Store,
behind a cache that coalesces concurrent requests and serves stale data when the database is down.`,
}

func init() {
	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags(rootCmd.PersistentFlags())

	cobra.OnInitialize(initConfig)
}

func initFlags(flags *pflag.FlagSet) {
	flags.StringVar(&envFile, "env-file", ".env", "file with KEY=value pairs loaded into the environment | example: --env-file=.env.preview")

	flags.StringP("port", "p", "", "change port number with --port <number> | example: --port=3000")
	flags.BoolP("debug", "d", false, "displaying debug log with --debug <true/false> | example: --debug=true")
	flags.StringP("basic-auth", "b", "", "basic auth credentials for /api | example: -b=user:secret,user2:secret2")
	flags.String("base-path", "", `base path for subpath deployment | example: --base-path="/governance"`)
	flags.String("trusted-proxies", "", `trusted proxy IP ranges | example: --trusted-proxies="10.0.0.0/8,172.16.0.0/12"`)

	flags.String("db-driver", "", "yaci store database driver, postgres or sqlite | example: --db-driver=sqlite")
	flags.String("db-host", "", "yaci store database host | example: --db-host=localhost")
	flags.Int("db-port", 0, "yaci store database port | example: --db-port=5432")
	flags.String("db-user", "", "yaci store database user")
	flags.String("db-password", "", "yaci store database password")
	flags.String("db-name", "", "database name, or file path for sqlite | example: --db-name=yaci_store")
	flags.String("db-schema", "", "postgres schema holding the yaci store tables | example: --db-schema=preview")

	flags.Bool("cache", true, "enable the provider cache | example: --cache=false")
	flags.Int("cache-max", 0, "maximum in-memory cache entries | example: --cache-max=20000")
	flags.Bool("valkey", false, "share the cache through valkey | example: --valkey=true")
	flags.String("valkey-address", "", "valkey address | example: --valkey-address=localhost:6379")
	flags.Bool("warmup", true, "periodically refresh hot cache entries | example: --warmup=false")
	flags.Int("warmup-workers", 0, "concurrent warmup refreshes | example: --warmup-workers=4")
}

func initConfig() {
	v := config.NewViper(envFile)
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			logrus.Fatalf("[CONFIG] failed to bind --%s: %v", flag, err)
		}
	}

	loaded, err := config.LoadConfig(v)
	if err != nil {
		logrus.Fatalf("[CONFIG] invalid configuration: %v", err)
	}
	cfg = loaded

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
