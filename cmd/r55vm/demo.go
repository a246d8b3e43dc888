package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/r55-labs/r55vm/internal/abiword"
	"github.com/r55-labs/r55vm/internal/demohost"
	"github.com/r55-labs/r55vm/internal/log"
)

// demoMinter is the erc20 example's hardcoded authorized minter,
// examples/erc20/token.go's authorizedMinter = guest.Address{19: 0x07}.
var demoMinter = common.Address{19: 0x07}

func newDemoCmd() *cobra.Command {
	var runtimeELFPath, deployELFPath string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run spec.md §8's six end-to-end scenarios against the erc20 example",
		Long: `demo drives internal/demohost through the six scenarios spec.md's
TESTABLE PROPERTIES section describes for a three-method ERC20-shaped
contract: mint-then-read, transfer success, insufficient-funds revert,
unauthorized-mint revert, unknown-selector revert, and deploy-then-call.

It needs the erc20 example already built by TinyGo:

  tinygo build -target=riscv64 -scheduler=none -gc=none \
      -o examples/erc20/deploy/runtime.elf ./examples/erc20
  tinygo build -target=riscv64 -scheduler=none -gc=none \
      -o deploy.elf ./examples/erc20/deploy

  r55vm demo --runtime-elf examples/erc20/deploy/runtime.elf --deploy-elf deploy.elf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(runtimeELFPath, deployELFPath)
		},
	}
	cmd.Flags().StringVar(&runtimeELFPath, "runtime-elf", "examples/erc20/deploy/runtime.elf", "path to the erc20 example's compiled runtime ELF")
	cmd.Flags().StringVar(&deployELFPath, "deploy-elf", "deploy.elf", "path to the erc20 deploy constructor's compiled ELF")
	return cmd
}

func runDemo(runtimeELFPath, deployELFPath string) error {
	deployELF, err := os.ReadFile(deployELFPath)
	if err != nil {
		return fmt.Errorf(`demo: reading %s: %w

demo needs TinyGo-built guest binaries; see 'r55vm demo --help' for the
build commands that produce them`, deployELFPath, err)
	}
	if _, err := os.Stat(runtimeELFPath); err != nil {
		return fmt.Errorf("demo: %s must exist before building %s (deploy embeds it via go:embed): %w", runtimeELFPath, deployELFPath, err)
	}

	h := demohost.New(0)
	rec := newRecorder()
	rec.attach(log.L)
	driver := demohost.NewDriver(h)
	failed := 0

	account1 := common.Address{19: 0x01}
	account2 := common.Address{19: 0x02}
	accountE := common.Address{19: 0x05}
	attacker := common.Address{19: 0x06}

	// Scenario 1: mint then read.
	contractA := common.Address{19: 0xA1}
	if _, err := driver.Deploy(contractA, demoMinter, deployELF, nil); err != nil {
		return fmt.Errorf("scenario 1: deploy: %w", err)
	}
	mint(driver, contractA, demoMinter, account1, 42)
	bal := balanceOf(driver, contractA, account1)
	if !report("1. mint then read", bal == 42, fmt.Sprintf("balance_of(01) = %d, want 42", bal)) {
		failed++
	}

	// Scenario 2: transfer success. A fresh contract instance so the
	// precondition balance matches spec.md §8 exactly (100, not 42 plus
	// whatever scenario 1 left behind).
	contractA2 := common.Address{19: 0xA2}
	if _, err := driver.Deploy(contractA2, demoMinter, deployELF, nil); err != nil {
		return fmt.Errorf("scenario 2: deploy: %w", err)
	}
	mint(driver, contractA2, demoMinter, account1, 100)
	transferOK, _ := transfer(driver, contractA2, account1, account2, 30)
	got1, got2 := balanceOf(driver, contractA2, account1), balanceOf(driver, contractA2, account2)
	if !report("2. transfer success", transferOK && got1 == 70 && got2 == 30,
		fmt.Sprintf("transfer ok=%v, balance_of(01)=%d (want 70), balance_of(02)=%d (want 30)", transferOK, got1, got2)) {
		failed++
	}

	// Scenario 3: transfer insufficient funds, from a zero balance.
	contractB := common.Address{19: 0xB2}
	if _, err := driver.Deploy(contractB, demoMinter, deployELF, nil); err != nil {
		return fmt.Errorf("scenario 3: deploy: %w", err)
	}
	accountC, accountD := common.Address{19: 0x03}, common.Address{19: 0x04}
	_, reverted := transfer(driver, contractB, accountC, accountD, 1)
	if !report("3. transfer insufficient funds", reverted && balanceOf(driver, contractB, accountC) == 0,
		fmt.Sprintf("reverted=%v, balance_of(03)=%d", reverted, balanceOf(driver, contractB, accountC))) {
		failed++
	}

	// Scenario 4: unauthorized mint.
	_, reverted = mint(driver, contractB, attacker, accountE, 100)
	if !report("4. unauthorized mint", reverted && balanceOf(driver, contractB, accountE) == 0,
		fmt.Sprintf("reverted=%v, balance_of(05)=%d", reverted, balanceOf(driver, contractB, accountE))) {
		failed++
	}

	// Scenario 5: unknown selector.
	_, reverted5 := driver.Call(contractB, demoMinter, []byte{0xff, 0xff, 0xff, 0xff})
	if !report("5. unknown selector", reverted5, fmt.Sprintf("reverted=%v", reverted5)) {
		failed++
	}

	// Scenario 6: deploy-then-call. A zero balance_of on an untouched
	// address alone can't distinguish a working runtime from one that
	// silently reverts every call (balanceOf treats both as 0), so mint
	// and read back a nonzero balance too, exercising the freshly
	// deployed contract's runtime end to end.
	contractC := common.Address{19: 0xC3}
	if _, err := driver.Deploy(contractC, demoMinter, deployELF, nil); err != nil {
		return fmt.Errorf("scenario 6: deploy: %w", err)
	}
	fresh := common.Address{19: 0x09}
	untouchedOK := balanceOf(driver, contractC, fresh) == 0
	mintOK, _ := mint(driver, contractC, demoMinter, fresh, 55)
	mintedBal := balanceOf(driver, contractC, fresh)
	if !report("6. deploy then call", untouchedOK && mintOK && mintedBal == 55,
		fmt.Sprintf("balance_of(untouched)=0 ok=%v, mint ok=%v, balance_of(09)=%d (want 55)", untouchedOK, mintOK, mintedBal)) {
		failed++
	}

	if err := rec.writeJSONL(effectiveTraceSink()); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("demo: %d of 6 scenarios failed", failed)
	}
	return nil
}

func report(name string, ok bool, detail string) bool {
	status := "PASS"
	if !ok {
		status = "FAIL"
	}
	fmt.Printf("[%s] %s: %s\n", status, name, detail)
	return ok
}

func balanceOf(d *demohost.Driver, contract, owner common.Address) uint64 {
	calldata := append(selectorBytes(0), abiword.NewEncoder().Address(abiword.Address(owner)).Bytes()...)
	out, reverted := d.Call(contract, demoMinter, calldata)
	if reverted || len(out) < abiword.WordSizeUint64 {
		return 0
	}
	v, _ := abiword.NewDecoder(out).Uint64()
	return v
}

func transfer(d *demohost.Driver, contract, from, to common.Address, value uint64) (ok, reverted bool) {
	calldata := append(selectorBytes(1), abiword.NewEncoder().
		Address(abiword.Address(from)).Address(abiword.Address(to)).Uint64(value).Bytes()...)
	out, reverted := d.Call(contract, from, calldata)
	if reverted {
		return false, true
	}
	b, err := abiword.NewDecoder(out).Bool()
	return b && err == nil, false
}

func mint(d *demohost.Driver, contract, caller, to common.Address, value uint64) (ok, reverted bool) {
	calldata := append(selectorBytes(2), abiword.NewEncoder().
		Address(abiword.Address(to)).Uint64(value).Bytes()...)
	out, reverted := d.Call(contract, caller, calldata)
	if reverted {
		return false, true
	}
	b, err := abiword.NewDecoder(out).Bool()
	return b && err == nil, false
}

func selectorBytes(n uint32) []byte {
	return []byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)}
}
