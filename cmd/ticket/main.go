// cmd/ticket/main.go — mints and inspects subscription tickets.
//
// Usage examples:
//
//	# Mint a ticket scoped to two subgraphs
//	go run ./cmd/ticket/ --key <hex-private-key> --chain-id 1337 \
//	  --contract 0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512 \
//	  --allowed-subgraphs <id1>,<id2>
//
//	# Verify a ticket and print its payload
//	go run ./cmd/ticket/ --decode <ticket>
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/graphops/graph-subscriptions/internal/ticket"
)

func main() {
	keyHex := flag.String("key", "", "signer private key (hex); required unless --decode")
	chainID := flag.Uint64("chain-id", 1, "EIP-155 chain ID")
	contract := flag.String("contract", "", "subscriptions contract address (required unless --decode)")
	user := flag.String("user", "", "subscription owner address; omit when the signer is the owner")
	name := flag.String("name", "", "optional ticket name")
	subgraphs := flag.String("allowed-subgraphs", "", "comma-separated subgraph allow-list")
	deployments := flag.String("allowed-deployments", "", "comma-separated deployment allow-list")
	domains := flag.String("allowed-domains", "", "comma-separated origin domain allow-list")
	decode := flag.String("decode", "", "ticket to verify and print instead of minting")
	flag.Parse()

	if *decode != "" {
		decodeTicket(*decode)
		return
	}

	if *keyHex == "" || *contract == "" {
		fmt.Fprintln(os.Stderr, "error: --key and --contract are required")
		os.Exit(1)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(*keyHex, "0x"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse key: %v\n", err)
		os.Exit(1)
	}
	signer := ticket.NewKeySigner(key)

	contractAddr, err := ticket.ParseAddress(*contract)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse contract: %v\n", err)
		os.Exit(1)
	}

	payload := &ticket.Payload{
		ChainID:            *chainID,
		Contract:           contractAddr,
		Signer:             signer.Address(),
		Name:               optional(*name),
		AllowedSubgraphs:   optional(*subgraphs),
		AllowedDeployments: optional(*deployments),
		AllowedDomains:     optional(*domains),
	}
	if *user != "" {
		userAddr, err := ticket.ParseAddress(*user)
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse user: %v\n", err)
			os.Exit(1)
		}
		payload.User = &userAddr
	}

	minted, err := payload.ToBase64(signer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint ticket: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(minted)
}

func decodeTicket(s string) {
	payload, sig, err := ticket.FromBase64(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(payload, "", "  ")
	fmt.Println(string(out))
	fmt.Printf("signature : 0x%s\n", hex.EncodeToString(sig))
	fmt.Printf("signer    : %s\n", payload.Signer)
	fmt.Printf("user      : %s\n", payload.UserOrSigner())
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
