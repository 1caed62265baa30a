package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration

	// LockWait bounds how long a transaction waits for the database write lock.
	LockWait time.Duration
	// TxTimeout bounds the total execution time of a write transaction.
	TxTimeout time.Duration

	// SubmitRate is the number of submissions per minute allowed from one IP.
	SubmitRate int

	LogFile string
	Debug   bool
}

// Parse reads configuration from the command line. Defaults are taken from
// QF_* environment variables, which may be set in an optional .env file.
func Parse(args []string) (cfg Config, err error) {
	// a missing .env file is fine
	_ = godotenv.Load()

	fs := flag.NewFlagSet("quick-form", flag.ContinueOnError)

	var host string
	fs.StringVar(&host, "host", env("QF_HOST", "0.0.0.0"), "listen host name")
	var port uint
	fs.UintVar(&port, "port", envUint("QF_PORT", 80), "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", env("QF_DB_URL", "qform.sqlite"), "path to SQLite3 DB file")
	fs.StringVar(&cfg.TokenSecret, "token-secret", env("QF_TOKEN_SECRET", ""), "secret key for token encryption and decryption")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", envUint("QF_TOKEN_TTL", 120), "token TTL in seconds")
	fs.DurationVar(&cfg.LockWait, "lock-wait", 5*time.Second, "max wait for the database write lock")
	fs.DurationVar(&cfg.TxTimeout, "tx-timeout", 10*time.Second, "max duration of a write transaction")
	fs.IntVar(&cfg.SubmitRate, "submit-rate", int(envUint("QF_SUBMIT_RATE", 30)), "submissions per minute per IP (0 disables)")
	fs.StringVar(&cfg.LogFile, "log-file", env("QF_LOG_FILE", ""), "also write logs to this rotated file")
	fs.BoolVar(&cfg.Debug, "debug", os.Getenv("QF_DEBUG") != "", "log at DEBUG level")

	if err = fs.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	switch {
	case cfg.TokenSecret == "":
		err = errors.New("missing parameter -token-secret")
	case cfg.LockWait <= 0 || cfg.TxTimeout <= 0:
		err = errors.New("-lock-wait and -tx-timeout must be positive")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envUint(key string, def uint) uint {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return def
	}
	return uint(n)
}
