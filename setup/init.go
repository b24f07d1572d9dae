package setup

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/AmaanSayyad/Private-Pay-sub002/circuits"

	"github.com/consensys/gnark/frontend"
)

const (
	ArtefactsDirName   = "generated"
	TreeConfigFilename = "TreeConfig.json"
)

var (
	ArtefactsDirPath string
	TreeConfigPath   string
)

// CircuitData ties a circuit definition to the artifacts generated from it.
type CircuitData struct {
	Circuit        frontend.Circuit
	Name           string
	DefinitionPath string
}

var WithdrawalCircuitData CircuitData

func init() {
	_, filename, _, _ := runtime.Caller(0) // this file
	basePath := filepath.Dir(filename)     // the dir of this file

	ArtefactsDirPath = filepath.Join(basePath, ArtefactsDirName)
	// create artefactsDir if it does not exist
	if err := os.MkdirAll(ArtefactsDirPath, os.ModePerm); err != nil {
		panic("failed to create artefactsDir: " + err.Error())
	}

	TreeConfigPath = filepath.Join(ArtefactsDirPath, TreeConfigFilename)

	WithdrawalCircuitData = CircuitData{
		Circuit:        &circuits.WithdrawalCircuit{},
		Name:           "Withdrawal",
		DefinitionPath: circuits.WithdrawalCircuitPackageName,
	}
}
