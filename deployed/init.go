// Package deployed names the networks the pool can be set up for and the
// per-network directories that hold their exported artifacts.
package deployed

import (
	"os"
	"path/filepath"
	"runtime"
)

type Network int

const (
	MainNet Network = iota
	TestNet
	DevNet
)

func (n Network) String() string {
	return [...]string{"mainnet", "testnet", "devnet"}[n]
}

// ChainID returns the chain id of the network the pool settles on.
func (n Network) ChainID() uint64 {
	return [...]uint64{1, 11155111, 1337}[n]
}

// DirPath returns the directory holding the network's exported artifacts.
func (n Network) DirPath() string {
	return [...]string{MainNetDirPath, TestNetDirPath, DevnetDirPath}[n]
}

// LogFilePath returns the network's log file, kept next to its artifacts.
func (n Network) LogFilePath() string {
	return filepath.Join(n.DirPath(), LogFileName)
}

const (
	DevnetDirName  = "devnet"
	TestNetDirName = "testnet"
	MainNetDirName = "mainnet"
	LogFileName    = "log.txt"
)

var (
	DevnetDirPath  string
	TestNetDirPath string
	MainNetDirPath string
)

func init() {
	_, filename, _, _ := runtime.Caller(0) // this file
	basePath := filepath.Dir(filename)     // the dir of this file
	DevnetDirPath = filepath.Join(basePath, DevnetDirName)
	TestNetDirPath = filepath.Join(basePath, TestNetDirName)
	MainNetDirPath = filepath.Join(basePath, MainNetDirName)
	// create the directories if they do not exist
	for _, dir := range []string{DevnetDirPath, TestNetDirPath, MainNetDirPath} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			panic("failed to create " + dir + ": " + err.Error())
		}
	}
}
