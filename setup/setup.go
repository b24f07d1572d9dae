// Package setup generates the proving artifacts a deployment needs: it
// compiles the withdrawal circuit, runs the Groth16 setup and exports the
// results to the network's deployed directory.
package setup

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/AmaanSayyad/Private-Pay-sub002/config"
	"github.com/AmaanSayyad/Private-Pay-sub002/deployed"
	"github.com/AmaanSayyad/Private-Pay-sub002/zk"
)

/*

Setup follows these steps:
  1. Write the tree configuration to the artefacts directory
  2. Compile the withdrawal circuit and run the Groth16 setup, reusing
     cached artifacts unless the circuit definition changed
  3. Export the files to the deployed/<network> directory

Once setup is run, the deployed/<network> folder holds the files a frontend
needs to interact with the pool:
  * withdrawal.ccs	: compiled withdrawal constraint system
  * withdrawal.pk	: Groth16 proving key
  * withdrawal.vk	: Groth16 verifying key
  * TreeConfig.json	: tree configuration (depth, zero value, zero hashes)

The serialized constraint system and keys can be reloaded with the zk
package, alternatively frontends can recompile from the circuits package.
*/

// CreateArtifacts generates in `ArtefactsDirPath` all files needed to run a
// pool and build frontends, and exports them to the network's deployed
// directory. Uses the configuration in config/config.go.
func CreateArtifacts(network deployed.Network) {
	// check artifacts are not already exported for the network
	// (skip this check for devnet)
	if network != deployed.DevNet {
		exportedCcs := filepath.Join(network.DirPath(), zk.CcsFileName)
		if _, err := os.Stat(exportedCcs); err == nil {
			log.Fatalf("Setup files seem to be already exported for %s: %s exists",
				network, exportedCcs)
		}
	}

	writeTreeConfig()

	// a changed circuit definition invalidates the cached artifacts
	compiledPath := filepath.Join(ArtefactsDirPath, zk.CcsFileName)
	if shouldRecompile(compiledPath, WithdrawalCircuitData.DefinitionPath) {
		removeCachedArtifacts()
	}
	if _, err := zk.SetupOrLoad(ArtefactsDirPath); err != nil {
		log.Fatalf("Error setting up %s circuit: %v", WithdrawalCircuitData.Name, err)
	}

	log.Println("Successfully completed setup for", network)

	exportSetupFiles(network)
	log.Println("Exported frontend setup files to", network.DirPath())
}

// removeCachedArtifacts deletes the generated circuit artifacts so the next
// setup run regenerates them
func removeCachedArtifacts() {
	for _, name := range []string{zk.CcsFileName, zk.PkFileName, zk.VkFileName} {
		path := filepath.Join(ArtefactsDirPath, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Fatalf("Error removing stale artifact %s: %v", path, err)
		}
	}
}

// writeTreeConfig writes the tree configuration to the TreeConfigPath
func writeTreeConfig() {
	jsonData, err := json.MarshalIndent(config.Tree, "", "    ")
	if err != nil {
		log.Fatal("Error marshalling TreeConfig: ", err)
	}
	err = os.WriteFile(TreeConfigPath, jsonData, 0644)
	if err != nil {
		log.Fatal("Error writing TreeConfig: ", err)
	}
}

// exportSetupFiles copies the necessary files to initialize frontends to the network folder
func exportSetupFiles(network deployed.Network) {
	filepaths := []string{
		TreeConfigPath,
		filepath.Join(ArtefactsDirPath, zk.CcsFileName),
		filepath.Join(ArtefactsDirPath, zk.PkFileName),
		filepath.Join(ArtefactsDirPath, zk.VkFileName),
	}
	for _, path := range filepaths {
		err := copyFile(path, filepath.Join(network.DirPath(), filepath.Base(path)))
		if err != nil {
			log.Fatalf("Error copying file %s: %v", path, err)
		}
	}
}
