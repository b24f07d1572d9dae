// Package zk compiles the withdrawal circuit and runs the Groth16 lifecycle
// around it: one-time setup with artifact caching on disk, witness assembly,
// proving, and verifying.
package zk

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/AmaanSayyad/Private-Pay-sub002/circuits"
	"github.com/AmaanSayyad/Private-Pay-sub002/config"
	"github.com/AmaanSayyad/Private-Pay-sub002/logger"
)

// artifact file names inside a network's deployment directory
const (
	CcsFileName = "withdrawal.ccs"
	PkFileName  = "withdrawal.pk"
	VkFileName  = "withdrawal.vk"
)

// Artifacts bundles the compiled constraint system with the Groth16 keys.
type Artifacts struct {
	CCS constraint.ConstraintSystem
	PK  groth16.ProvingKey
	VK  groth16.VerifyingKey
}

// Compile builds the withdrawal circuit's constraint system.
func Compile() (constraint.ConstraintSystem, error) {
	ccs, err := frontend.Compile(config.Curve.ScalarField(), r1cs.NewBuilder,
		&circuits.WithdrawalCircuit{})
	if err != nil {
		return nil, fmt.Errorf("failed to compile withdrawal circuit: %v", err)
	}
	return ccs, nil
}

// Setup compiles the circuit and runs the Groth16 setup.
func Setup() (*Artifacts, error) {
	ccs, err := Compile()
	if err != nil {
		return nil, err
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("failed to run groth16 setup: %v", err)
	}
	return &Artifacts{CCS: ccs, PK: pk, VK: vk}, nil
}

// SetupOrLoad returns the artifacts stored under dir, running and persisting
// a fresh setup if any of them is missing.
func SetupOrLoad(dir string) (*Artifacts, error) {
	log := logger.Logger()

	a, err := LoadArtifacts(dir)
	if err == nil {
		log.Info().Str("dir", dir).Msg("loaded withdrawal circuit artifacts")
		return a, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	log.Info().Str("dir", dir).Msg("generating withdrawal circuit artifacts")
	a, err = Setup()
	if err != nil {
		return nil, err
	}
	if err := SaveArtifacts(dir, a); err != nil {
		return nil, err
	}
	return a, nil
}

// SaveArtifacts writes the constraint system and both keys under dir.
func SaveArtifacts(dir string, a *Artifacts) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create artifact dir: %v", err)
	}
	if err := writeTo(filepath.Join(dir, CcsFileName), a.CCS); err != nil {
		return err
	}
	if err := writeTo(filepath.Join(dir, PkFileName), a.PK); err != nil {
		return err
	}
	return writeTo(filepath.Join(dir, VkFileName), a.VK)
}

// LoadArtifacts reads artifacts previously written by SaveArtifacts.
func LoadArtifacts(dir string) (*Artifacts, error) {
	ccs := groth16.NewCS(config.Curve)
	if err := readFrom(filepath.Join(dir, CcsFileName), ccs); err != nil {
		return nil, err
	}
	pk := groth16.NewProvingKey(config.Curve)
	if err := readFrom(filepath.Join(dir, PkFileName), pk); err != nil {
		return nil, err
	}
	vk := groth16.NewVerifyingKey(config.Curve)
	if err := readFrom(filepath.Join(dir, VkFileName), vk); err != nil {
		return nil, err
	}
	return &Artifacts{CCS: ccs, PK: pk, VK: vk}, nil
}

// LoadVerifyingKey reads only the verifying key, which is all a pool host
// needs at runtime.
func LoadVerifyingKey(dir string) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(config.Curve)
	if err := readFrom(filepath.Join(dir, VkFileName), vk); err != nil {
		return nil, err
	}
	return vk, nil
}

func writeTo(path string, w io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if _, err := w.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write %s: %v", path, err)
	}
	return nil
}

func readFrom(path string, r io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := r.ReadFrom(f); err != nil {
		return fmt.Errorf("failed to read %s: %v", path, err)
	}
	return nil
}
