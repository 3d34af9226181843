//go:build mage
// +build mage

package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg" // mg contains helpful utility functions, like Deps
	"github.com/magefile/mage/sh"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// Default target to run when none is specified
var Default = Build

var (
	buildDir = "bin"
	binName  = "hoststat"
	pkg      = "./cmd/hoststat"
)

// Builds hoststat for the current platform
func Build() error {
	fmt.Println("Building...")
	return sh.RunV("go", "build", "-o", filepath.Join(buildDir, binName), pkg)
}

// Runs the unit tests with the race detector
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Runs go vet over every package
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Runs the interface against simulated hardware
func Mock() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(buildDir, binName), "-mock")
}

// Cleans up the build directory
func Clean() {
	fmt.Println("Cleaning...")
	os.RemoveAll(buildDir)
}

type Remote mg.Namespace

// Builds hoststat for a linux/arm64 host
func (Remote) Build() error {
	fmt.Println("Building for linux/arm64...")
	env := map[string]string{
		"GOOS":   "linux",
		"GOARCH": "arm64",
	}
	return sh.RunWithV(env, "go", "build", "-o", filepath.Join(buildDir, "linux-arm64", binName), pkg)
}

// Copies the linux/arm64 build to ~/hoststat on the host.
// Assumes you have SSH keys setup for the host.
func (Remote) Deploy(host string, username string) error {
	mg.Deps(Remote.Build)
	connStr := fmt.Sprintf("%s@%s", username, host)
	deployPath := "/home/" + username + "/hoststat"
	fmt.Printf("Copying binary via SCP to %s:%s\n", connStr, deployPath)

	if err := sh.Run("ssh", connStr, "mkdir -p", deployPath); err != nil {
		return fmt.Errorf("failed to create deploy path on host: %w", err)
	}
	if err := sh.Run("scp", filepath.Join(buildDir, "linux-arm64", binName), fmt.Sprintf("%s:%s/%s", connStr, deployPath, binName)); err != nil {
		return fmt.Errorf("failed to deploy to host: %w", err)
	}
	return nil
}

// Deploys, then prints one JSON snapshot collected on the host.
func (Remote) Snapshot(host string, username string) error {
	mg.Deps(mg.F(Remote.Deploy, host, username))
	client, err := sshClient(username, host)
	if err != nil {
		return fmt.Errorf("failed to create SSH client: %w", err)
	}
	defer client.Close()
	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer session.Close()

	session.Stdout = os.Stdout
	session.Stderr = os.Stderr
	if err := session.Run("~/hoststat/hoststat -json"); err != nil {
		if exitErr, ok := err.(*ssh.ExitError); ok {
			return fmt.Errorf("hoststat exited with status %d", exitErr.ExitStatus())
		}
		return fmt.Errorf("failed to run hoststat on host: %w", err)
	}
	return nil
}

func sshClient(user, host string) (*ssh.Client, error) {
	var authMethods []ssh.AuthMethod

	// Try to connect to SSH agent
	conn, err := net.Dial("unix", os.Getenv("SSH_AUTH_SOCK"))
	if err == nil {
		signers, err := agent.NewClient(conn).Signers()
		if err == nil {
			authMethods = append(authMethods, ssh.PublicKeys(signers...))
		}
	}

	if len(authMethods) == 0 {
		fmt.Println("No SSH keys found...")
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            authMethods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // Dev only.
	}
	addr := host + ":22"
	fmt.Println("Dialing SSH client to", addr)
	return ssh.Dial("tcp", addr, config)
}
