package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/AmaanSayyad/Private-Pay-sub002/deployed"
	"github.com/AmaanSayyad/Private-Pay-sub002/encrypt"
	"github.com/AmaanSayyad/Private-Pay-sub002/logger"
	"github.com/AmaanSayyad/Private-Pay-sub002/setup"
	"github.com/AmaanSayyad/Private-Pay-sub002/stealth"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
)

// metaKeysFilename is where the meta command stores the encrypted keys.
const metaKeysFilename = "meta.keys"

func main() {
	if len(os.Args) < 2 {
		fmt.Println(helpString())
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "setup":
		if len(os.Args) != 3 {
			fmt.Println(helpString())
			os.Exit(1)
		}
		networkName := os.Args[2]
		if networkName != "mainnet" && networkName != "testnet" && networkName != "devnet" {
			fmt.Printf("Invalid network: %s\n", networkName)
			fmt.Println("Valid networks are: mainnet, testnet, devnet")
			os.Exit(1)
		}

		var network deployed.Network
		switch networkName {
		case "mainnet":
			network = deployed.MainNet
		case "testnet":
			network = deployed.TestNet
		case "devnet":
			network = deployed.DevNet
		}

		logFile := initializeLog(network)
		defer logFile.Close()

		setup.CreateArtifacts(network)

	case "meta":
		if len(os.Args) != 2 {
			fmt.Println(helpString())
			os.Exit(1)
		}
		if err := generateMeta(); err != nil {
			log.Fatalf("Failed to generate meta-address: %v", err)
		}

	default:
		fmt.Printf("Invalid command: %s\n", command)
		fmt.Println("Valid commands are: setup, meta")
		os.Exit(1)
	}
}

// helpString returns the help string for the command line interface
func helpString() string {
	help := "Usage: privatepay <command> [arguments]\n"
	help += "Commands:\n"
	help += "  setup <mainnet|testnet|devnet>   generate and export the proving artifacts\n"
	help += "  meta                             generate a meta-address and payment link\n"
	return help
}

// generateMeta creates a fresh meta-address, prints the payment link, and
// stores the password-encrypted private keys in the working directory.
func generateMeta() error {
	if _, err := os.Stat(metaKeysFilename); err == nil {
		return fmt.Errorf("%s already exists, move it away before generating a new meta-address",
			metaKeysFilename)
	}

	meta, keys, err := stealth.GenerateMetaAddress()
	if err != nil {
		return err
	}

	backup := struct {
		SpendKey string `json:"spendKey"`
		ViewKey  string `json:"viewKey"`
	}{
		SpendKey: hexutil.Encode(crypto.FromECDSA(keys.SpendKey)),
		ViewKey:  hexutil.Encode(crypto.FromECDSA(keys.ViewKey)),
	}
	plaintext, err := json.MarshalIndent(backup, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode key material: %v", err)
	}

	encrypted, err := encrypt.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt key material: %v", err)
	}
	if err := os.WriteFile(metaKeysFilename, []byte(encrypted), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %v", metaKeysFilename, err)
	}

	fmt.Println("Payment link:", meta.String())
	fmt.Println("Encrypted keys written to", metaKeysFilename)
	fmt.Println("Share the payment link; keep the key file and its password safe.")
	return nil
}

// initializeLog sets the log output, for both the standard logger and the
// component logger, to both stdout and the log file. It returns the log file.
func initializeLog(network deployed.Network) *os.File {
	logFilePath := network.LogFilePath()

	var logFile *os.File
	var err error
	// for devnet we rewrite the log file, for testnet and mainnet we append
	if network == deployed.DevNet {
		logFile, err = os.Create(logFilePath)
	} else {
		logFile, err = os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	}
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(multiWriter)
	logger.SetOutput(zerolog.ConsoleWriter{Out: multiWriter, TimeFormat: "15:04:05", NoColor: true})

	return logFile
}
