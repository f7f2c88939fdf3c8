// Command spvsign is an offline, single-file-distribution SPV envelope
// verifier and P2PKH transaction signer. It reads every input from a path
// argument exactly once: no network access, no file watching, no retries.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"rubin.dev/spvcore/ecdsa"
	"rubin.dev/spvcore/encoding"
	"rubin.dev/spvcore/envelope"
	"rubin.dev/spvcore/header"
	"rubin.dev/spvcore/spverrors"
	"rubin.dev/spvcore/txbuilder"
)

// checkpoint is the compiled-in trust anchor used whenever no header chain
// file is supplied; the exact values are configuration, not logic, per the
// spec's resolution of the checkpoint-revision question (the superset
// {height, hash, nBits} triple, covering both historical checkpoint
// revisions).
var checkpoint = mustCheckpoint(880_000, "00000000000000000000a9c1f6e4d3b2c7d8e9f0a1b2c3d4e5f60718293a4b5c", 0x17053894)

func mustCheckpoint(height uint32, hashHex string, bits uint32) header.Checkpoint {
	b, err := encoding.HexToBytes(hashHex)
	if err != nil || len(b) != 32 {
		panic("spvsign: invalid compiled-in checkpoint hash")
	}
	var h [32]byte
	copy(h[:], b)
	return header.Checkpoint{Height: height, Hash: h, Bits: bits}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "usage: spvsign <verify|sign|chain-verify> [flags]")
		return 7
	}

	switch args[0] {
	case "verify":
		return runVerify(args[1:], stdout, stderr)
	case "sign":
		return runSign(args[1:], stdout, stderr)
	case "chain-verify":
		return runChainVerify(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown subcommand %q\n", args[0])
		return 7
	}
}

func runVerify(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envelopePath := fs.String("envelope", "", "path to a merkle-envelope JSON file")
	chainPath := fs.String("chain", "", "optional path to a header-chain file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *envelopePath == "" {
		fmt.Fprintln(stderr, "verify requires -envelope")
		return 7
	}

	ctx, err := buildVerifierContext(*chainPath)
	if err != nil {
		return reportAndExit(stderr, err)
	}

	data, err := os.ReadFile(*envelopePath)
	if err != nil {
		fmt.Fprintf(stderr, "read envelope: %v\n", err)
		return 2
	}

	env, err := envelope.ParseAndValidate(data, ctx)
	if err != nil {
		return reportAndExit(stderr, err)
	}

	fmt.Fprintf(stdout, "OK txid=%s vout=%d satoshis=%d confirmations=%d\n",
		encoding.BytesToHex(env.Txid[:]), env.Vout, env.Satoshis, env.Confirmations)
	return 0
}

func runSign(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var envelopePaths multiStringFlag
	fs.Var(&envelopePaths, "envelope", "path to a merkle-envelope JSON file (repeatable)")
	chainPath := fs.String("chain", "", "optional path to a header-chain file")
	wifStr := fs.String("wif", "", "WIF-encoded private key controlling every input")
	dest := fs.String("dest", "", "destination P2PKH address")
	amount := fs.Uint64("amount", 0, "amount to send, in satoshis")
	feeRate := fs.Uint64("fee-rate", 1, "fee rate, in satoshis per estimated byte")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if len(envelopePaths) == 0 || *wifStr == "" || *dest == "" || *amount == 0 {
		fmt.Fprintln(stderr, "sign requires -envelope (one or more), -wif, -dest, -amount")
		return 7
	}

	ctx, err := buildVerifierContext(*chainPath)
	if err != nil {
		return reportAndExit(stderr, err)
	}

	envs := make([]*envelope.Envelope, 0, len(envelopePaths))
	for _, p := range envelopePaths {
		data, err := os.ReadFile(p)
		if err != nil {
			fmt.Fprintf(stderr, "read envelope %s: %v\n", p, err)
			return 2
		}
		env, err := envelope.ParseAndValidate(data, ctx)
		if err != nil {
			return reportAndExit(stderr, err)
		}
		envs = append(envs, env)
	}

	wif, err := ecdsa.DecodeWIF(*wifStr)
	if err != nil {
		return reportAndExit(stderr, err)
	}

	hexTx, err := txbuilder.BuildAndSign(envs, wif, *dest, *amount, *feeRate)
	if err != nil {
		return reportAndExit(stderr, err)
	}

	fmt.Fprintln(stdout, hexTx)
	return 0
}

func runChainVerify(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("chain-verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	chainPath := fs.String("chain", "", "path to a header-chain file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *chainPath == "" {
		fmt.Fprintln(stderr, "chain-verify requires -chain")
		return 7
	}

	ctx := header.NewVerifierContext(checkpoint)
	view, err := loadAndVerifyChain(*chainPath, ctx)
	if err != nil {
		return reportAndExit(stderr, err)
	}

	fmt.Fprintf(stdout, "OK anchorHeight=%d headers=%d cumulativeWork=%s\n",
		view.AnchorHeight, len(view.Headers), view.CumulativeWork.Text(16))
	return 0
}

// buildVerifierContext constructs a VerifierContext from the compiled-in
// checkpoint and, if chainPath is non-empty, loads and verifies that
// header-chain file into it.
func buildVerifierContext(chainPath string) (*header.VerifierContext, error) {
	ctx := header.NewVerifierContext(checkpoint)
	if chainPath == "" {
		return ctx, nil
	}
	if _, err := loadAndVerifyChain(chainPath, ctx); err != nil {
		return nil, err
	}
	return ctx, nil
}

func loadAndVerifyChain(path string, ctx *header.VerifierContext) (*header.ChainView, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, spverrors.Newf(spverrors.KindInput, spverrors.ReasonMissingField, "read header chain file: %v", err)
	}
	return parseAndVerifyChainFile(data, ctx)
}

func reportAndExit(stderr io.Writer, err error) int {
	if spvErr, ok := err.(*spverrors.Error); ok {
		fmt.Fprintln(stderr, spvErr.Error())
		return spverrors.ExitCode(spvErr.Kind)
	}
	fmt.Fprintln(stderr, err.Error())
	return 1
}

// multiStringFlag collects repeated occurrences of a flag into a slice,
// the same convention the teacher's CLI uses for repeatable flags.
type multiStringFlag []string

func (m *multiStringFlag) String() string {
	if m == nil {
		return ""
	}
	return strings.Join(*m, ",")
}

func (m *multiStringFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

// parseAndVerifyChainFile decodes the binary header-chain file format
// (anchorHeight(4 LE) ∥ anchorHash(32) ∥ headerCount(4 LE) ∥ headers) and
// verifies it via header.VerifyChain. A truncated file, or one that fails
// chain linkage or Proof-of-Work at any offset, is rejected in full.
func parseAndVerifyChainFile(data []byte, ctx *header.VerifierContext) (*header.ChainView, error) {
	c := encoding.NewCursor(data)

	anchorHeight, err := c.ReadU32LE()
	if err != nil {
		return nil, err
	}
	anchorHash, err := c.ReadHash32()
	if err != nil {
		return nil, err
	}
	count, err := c.ReadU32LE()
	if err != nil {
		return nil, err
	}

	headers := make([][header.HeaderLen]byte, count)
	for i := uint32(0); i < count; i++ {
		raw, err := c.ReadExact(header.HeaderLen)
		if err != nil {
			return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonHexMalformed, "truncated header chain file")
		}
		copy(headers[i][:], raw)
	}

	return header.VerifyChain(anchorHeight, anchorHash, headers, ctx)
}
