// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Command stateproof verifies Substrate storage proofs from the
// command line. Proofs are given as a JSON fixture file holding the
// trusted root hash, the encoded proof nodes and the keys to check.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ChainSafe/substrate-state-proof/internal/trie/node"
	"github.com/ChainSafe/substrate-state-proof/lib/common"
	"github.com/ChainSafe/substrate-state-proof/lib/trie/proof"
	"github.com/ChainSafe/substrate-state-proof/pkg/scale"
	"github.com/fatih/color"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var (
	fixtureFlag = cli.StringFlag{
		Name:     "fixture",
		Usage:    "path to a JSON fixture file with root, proof and keys fields",
		Required: true,
	}
	uint256Flag = cli.BoolFlag{
		Name:  "uint256",
		Usage: "decode each value found as a SCALE little endian unsigned 256 bit integer",
	}
	verboseFlag = cli.BoolFlag{
		Name:  "verbose",
		Usage: "log proof node details while verifying",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "stateproof"
	app.Usage = "verify Substrate state trie proofs"
	app.Commands = []cli.Command{
		{
			Name:   "verify",
			Usage:  "verify keys against a root hash using a proof",
			Flags:  []cli.Flag{fixtureFlag, uint256Flag, verboseFlag},
			Action: verifyAction,
		},
		{
			Name:   "inspect",
			Usage:  "decode and display each node of a proof",
			Flags:  []cli.Flag{fixtureFlag},
			Action: inspectAction,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (logger *zap.Logger, err error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	config := zap.NewDevelopmentConfig()
	config.DisableStacktrace = true
	return config.Build()
}

func verifyAction(ctx *cli.Context) error {
	rootHash, encodedProofNodes, keys, err := loadFixture(ctx.String("fixture"))
	if err != nil {
		return err
	}

	logger, err := newLogger(ctx.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("verifying proof",
		zap.Stringer("root", rootHash),
		zap.Int("proof nodes", len(encodedProofNodes)),
		zap.Int("keys", len(keys)))
	for i, encodedProofNode := range encodedProofNodes {
		merkleValue, err := node.MerkleValueRoot(encodedProofNode)
		if err != nil {
			return fmt.Errorf("hashing proof node at index %d: %w", i, err)
		}
		logger.Debug("proof node",
			zap.Int("index", i),
			zap.Int("size", len(encodedProofNode)),
			zap.Stringer("blake2b", merkleValue))
	}

	values, err := proof.Verify(encodedProofNodes, rootHash, keys)
	if err != nil {
		return verificationFailedError(err)
	}

	for i, value := range values {
		if value == nil {
			color.Yellow("key %s: absent", common.BytesToHex(keys[i]))
			continue
		}

		if ctx.Bool("uint256") {
			number, err := scale.DecodeUint256(value)
			if err != nil {
				return fmt.Errorf("decoding value for key %s: %w",
					common.BytesToHex(keys[i]), err)
			}
			color.Green("key %s: %s", common.BytesToHex(keys[i]), number.Dec())
			continue
		}

		color.Green("key %s: %s", common.BytesToHex(keys[i]), common.BytesToHex(value))
	}

	return nil
}

// verificationFailedError returns a non zero exit error carrying the
// failure message, so the failure is reported on a single line.
func verificationFailedError(err error) error {
	return cli.NewExitError(color.RedString("proof verification failed: %s", err), 1)
}

func inspectAction(ctx *cli.Context) error {
	_, encodedProofNodes, _, err := loadFixture(ctx.String("fixture"))
	if err != nil {
		return err
	}

	for i, encodedProofNode := range encodedProofNodes {
		merkleValue, err := node.MerkleValueRoot(encodedProofNode)
		if err != nil {
			return fmt.Errorf("hashing proof node at index %d: %w", i, err)
		}
		fmt.Printf("node %d, blake2b %s:\n", i, merkleValue)

		decoded, err := node.Decode(bytes.NewReader(encodedProofNode))
		if err != nil {
			color.Red("  cannot decode: %s", err)
			continue
		}
		fmt.Println(nodeString(decoded))
	}

	return nil
}

func nodeString(n node.Node) string {
	switch n := n.(type) {
	case node.Empty:
		return "Empty"
	case node.Leaf:
		return n.String()
	case node.Branch:
		return n.String()
	default:
		return fmt.Sprintf("%T", n)
	}
}
