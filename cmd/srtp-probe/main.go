// Command srtp-probe round-trips one RTP packet through a pair of SRTP
// sessions, sender and receiver, sharing the same master key, master
// salt, and protection profile. It exists to exercise the srtp and
// session packages end to end without pulling in a real RTP stack,
// in the spirit of srs-bench's standalone probe commands.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/ossrs/go-oryx-lib/logger"
	"github.com/pion/rtp"
	"github.com/pkg/errors"

	"github.com/ossrs/go-srtp/session"
	"github.com/ossrs/go-srtp/srtp"
)

func main() {
	ctx := context.Background()

	if err := loadEnvFile(); err != nil {
		logger.Ef(ctx, "load .env: %+v", err)
		os.Exit(1)
	}
	setupDefaultEnv()

	var profileName, masterKeyHex, masterSaltHex, payload string
	var ssrc uint

	flag.StringVar(&profileName, "profile", envProfile(), "protection profile name")
	flag.StringVar(&masterKeyHex, "key", envMasterKey(), "hex-encoded master key; random if empty")
	flag.StringVar(&masterSaltHex, "salt", envMasterSalt(), "hex-encoded master salt; random if empty")
	flag.StringVar(&payload, "payload", envPayload(), "RTP payload to protect/unprotect")
	flag.UintVar(&ssrc, "ssrc", envSSRCValue(), "RTP SSRC to probe")
	flag.Parse()

	if err := run(ctx, profileName, masterKeyHex, masterSaltHex, payload, uint32(ssrc)); err != nil {
		logger.Ef(ctx, "probe failed: %+v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, profileName, masterKeyHex, masterSaltHex, payload string, ssrc uint32) error {
	policy, err := profileByName(profileName)
	if err != nil {
		return err
	}

	masterKey, masterSalt, err := loadOrGenerateKeys(masterKeyHex, masterSaltHex, policy)
	if err != nil {
		return err
	}

	logger.Tf(ctx, "profile=%v ssrc=%v key=%v salt=%v", profileName, ssrc,
		hex.EncodeToString(masterKey), hex.EncodeToString(masterSalt))

	sender := session.NewSession(masterKey, masterSalt, policy, 0)
	receiver := session.NewSession(masterKey, masterSalt, policy, 0)

	hdr := rtp.Header{
		Version:        2,
		PayloadType:    111,
		SequenceNumber: 0,
		Timestamp:      0,
		SSRC:           ssrc,
	}
	raw, err := hdr.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshal rtp header")
	}
	raw = append(raw, []byte(payload)...)

	pkt := srtp.NewPacket(raw)
	if err := sender.Protect(pkt); err != nil {
		return errors.Wrap(err, "protect")
	}
	logger.Tf(ctx, "protected %v bytes", pkt.Length())

	ok, err := receiver.Unprotect(pkt)
	if err != nil {
		return errors.Wrap(err, "unprotect")
	}
	if !ok {
		return errors.New("unprotect rejected the packet")
	}

	var hdr2 rtp.Header
	payloadOffset2, err := hdr2.Unmarshal(pkt.Region())
	if err != nil {
		return errors.Wrap(err, "unmarshal decrypted header")
	}
	decrypted := pkt.Region()[payloadOffset2:]
	fmt.Printf("roundtrip ok: payload=%q\n", string(decrypted))
	return nil
}

func profileByName(name string) (srtp.Policy, error) {
	switch name {
	case "AES_CM_128_HMAC_SHA1_80":
		return srtp.ProfileAESCM128HMACSHA180, nil
	case "AES_CM_128_HMAC_SHA1_32":
		return srtp.ProfileAESCM128HMACSHA132, nil
	case "AES_F8_128_HMAC_SHA1_80":
		return srtp.ProfileAESF8128HMACSHA180, nil
	case "TWOFISH_CM_128_SKEIN_MAC_128":
		return srtp.ProfileTwofishCM128SkeinMAC128, nil
	case "NULL_NULL":
		return srtp.ProfileNullNullNull, nil
	default:
		return srtp.Policy{}, errors.Errorf("unknown profile %q", name)
	}
}

func loadOrGenerateKeys(masterKeyHex, masterSaltHex string, policy srtp.Policy) ([]byte, []byte, error) {
	var masterKey, masterSalt []byte
	var err error

	if masterKeyHex != "" {
		if masterKey, err = hex.DecodeString(masterKeyHex); err != nil {
			return nil, nil, errors.Wrap(err, "decode key")
		}
	} else {
		masterKey = make([]byte, policy.EncKeyLength)
		if _, err := rand.Read(masterKey); err != nil {
			return nil, nil, errors.Wrap(err, "generate key")
		}
	}

	if masterSaltHex != "" {
		if masterSalt, err = hex.DecodeString(masterSaltHex); err != nil {
			return nil, nil, errors.Wrap(err, "decode salt")
		}
	} else {
		masterSalt = make([]byte, policy.SaltKeyLength)
		if _, err := rand.Read(masterSalt); err != nil {
			return nil, nil, errors.Wrap(err, "generate salt")
		}
	}

	return masterKey, masterSalt, nil
}
