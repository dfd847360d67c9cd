package main

import (
	"os"
	"path"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// loadEnvFile loads environment variables from a .env file in the working
// directory, if one exists. Grounded on srs-proxy's loadEnvFile: optional
// file, godotenv.Overload so .env always wins over an already-set
// variable of the same name.
func loadEnvFile() error {
	workDir, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "getwd")
	}

	envFile := path.Join(workDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Overload(envFile); err != nil {
			return errors.Wrapf(err, "load %v", envFile)
		}
	}
	return nil
}

// setEnvDefault sets key=value unless key is already set.
func setEnvDefault(key, value string) {
	if os.Getenv(key) == "" {
		os.Setenv(key, value)
	}
}

func setupDefaultEnv() {
	setEnvDefault("SRTP_PROBE_PROFILE", "AES_CM_128_HMAC_SHA1_80")
	setEnvDefault("SRTP_PROBE_SSRC", "0")
	setEnvDefault("SRTP_PROBE_MASTER_KEY", "")
	setEnvDefault("SRTP_PROBE_MASTER_SALT", "")
	setEnvDefault("SRTP_PROBE_PAYLOAD", "hello srtp")
}

func envProfile() string    { return os.Getenv("SRTP_PROBE_PROFILE") }
func envMasterKey() string  { return os.Getenv("SRTP_PROBE_MASTER_KEY") }
func envMasterSalt() string { return os.Getenv("SRTP_PROBE_MASTER_SALT") }
func envPayload() string    { return os.Getenv("SRTP_PROBE_PAYLOAD") }

// envSSRCValue parses SRTP_PROBE_SSRC for use as the -ssrc flag's default,
// falling back to 0 if it is unset or not a valid uint32.
func envSSRCValue() uint {
	v, err := strconv.ParseUint(os.Getenv("SRTP_PROBE_SSRC"), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}
