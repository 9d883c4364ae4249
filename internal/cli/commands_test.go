package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pharmstock/internal/inventory"
)

type productResponse struct {
	Status string            `json:"status"`
	Data   inventory.Product `json:"data"`
	Error  *CLIError         `json:"error"`
}

type inventoryResponse struct {
	Status string                    `json:"status"`
	Data   []inventory.InventoryLine `json:"data"`
}

type movementsResponse struct {
	Status string                   `json:"status"`
	Data   []inventory.MovementLine `json:"data"`
}

func mustExecute(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := execute(t, db, args...)
	require.NoError(t, err, "output: %s", out)
	return out
}

func TestInitCommand(t *testing.T) {
	db := tempDB(t)

	out := mustExecute(t, db, "init")
	assert.Equal(t, "✓ database ready: "+db+"\n", out)

	out = mustExecute(t, db, "--format", "json", "init")
	var resp struct {
		Status string     `json:"status"`
		Data   InitResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.SchemaVersion)
	assert.Equal(t, db, resp.Data.DBPath)
}

func TestProductAddAndList(t *testing.T) {
	db := tempDB(t)

	out := mustExecute(t, db, "product", "add", "  Doliprane 1000 ", " 12 ")
	assert.Equal(t, "✓ product 1 added: Doliprane 1000 (12)\n", out)
	mustExecute(t, db, "product", "add", "aspirin", "2 boites")

	out = mustExecute(t, db, "product", "list")
	assert.Equal(t,
		"ID  NAME            QUANTITY\n"+
			"2   aspirin         2 boites\n"+
			"1   Doliprane 1000  12\n",
		out)
}

func TestProductAdd_JSON(t *testing.T) {
	out := mustExecute(t, tempDB(t), "--format", "json", "product", "add", "Aspirin", "10")

	var resp productResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(1), resp.Data.ID)
	assert.Equal(t, "Aspirin", resp.Data.Name)
	assert.Equal(t, "10", resp.Data.Quantity)
	assert.Equal(t, "10", resp.Data.DeclaredQuantity)
}

func TestProductAdd_Rejections(t *testing.T) {
	db := tempDB(t)
	mustExecute(t, db, "product", "add", "Aspirin", "10")

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"duplicate", []string{"Aspirin", "5"}, ErrCodeDuplicateProduct},
		{"empty name", []string{"  ", "5"}, inventory.ErrEmptyName},
		{"empty quantity", []string{"Ibuprofen", ""}, inventory.ErrEmptyQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, db, append([]string{"--format", "json", "product", "add"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			var resp productResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}

	out := mustExecute(t, db, "--format", "json", "product", "list")
	assert.Equal(t, 1, strings.Count(out, `"name"`), "rejected products are not stored")
}

func TestMovementAdd_OutThenInventory(t *testing.T) {
	db := tempDB(t)
	mustExecute(t, db, "product", "add", "Aspirin", "10")

	out := mustExecute(t, db, "movement", "add", "1", "3")
	assert.Equal(t, "✓ movement 1 recorded: OUT 3 for product 1\n", out)

	out = mustExecute(t, db, "--format", "json", "inventory")
	var resp inventoryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)

	line := resp.Data[0]
	assert.Equal(t, "Aspirin", line.Name)
	assert.Equal(t, "7", line.Quantity)
	assert.Equal(t, "3", line.TotalOut.String())
	require.True(t, line.Remaining.Valid)
	assert.Equal(t, "7", line.Remaining.Decimal.String())
}

func TestMovementAdd_CommaAndType(t *testing.T) {
	db := tempDB(t)
	mustExecute(t, db, "product", "add", "Sirop", "2,5")

	mustExecute(t, db, "movement", "add", "1", "0,5")
	mustExecute(t, db, "movement", "add", "1", "4", "--type", "in")

	out := mustExecute(t, db, "inventory")
	assert.Equal(t,
		"ID  NAME   QUANTITY  OUT  REMAINING\n"+
			"1   Sirop  2         0.5  2\n",
		out)

	out = mustExecute(t, db, "remaining", "1")
	assert.Equal(t, "Sirop: 3.5\n", out)
}

func TestMovementAdd_Rejections(t *testing.T) {
	db := tempDB(t)
	mustExecute(t, db, "product", "add", "Aspirin", "10")
	mustExecute(t, db, "product", "add", "Sérum", "flacon")

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"non-integer id", []string{"one", "1"}, ErrCodeBadArgument},
		{"bad type", []string{"1", "1", "--type", "sideways"}, inventory.ErrInvalidMovementType},
		{"non-numeric quantity", []string{"1", "a few"}, inventory.ErrNotNumeric},
		{"zero quantity", []string{"1", "0"}, inventory.ErrNonPositiveQuantity},
		{"negative quantity", []string{"--", "1", "-2"}, inventory.ErrNonPositiveQuantity},
		{"unknown product", []string{"42", "1"}, ErrCodeProductNotFound},
		{"out on free text", []string{"2", "1"}, inventory.ErrNotNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, db, append([]string{"movement", "add"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}

	out := mustExecute(t, db, "--format", "json", "movement", "list")
	var resp movementsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Empty(t, resp.Data, "rejected movements leave no row")
}

func TestMovementList_NewestFirst(t *testing.T) {
	db := tempDB(t)
	mustExecute(t, db, "product", "add", "Aspirin", "10")
	mustExecute(t, db, "product", "add", "Ibuprofen", "20")
	mustExecute(t, db, "movement", "add", "1", "1")
	mustExecute(t, db, "movement", "add", "2", "5", "-t", "IN")

	out := mustExecute(t, db, "--format", "json", "movement", "list")
	var resp movementsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)

	assert.Equal(t, int64(2), resp.Data[0].ID)
	assert.Equal(t, "Ibuprofen", resp.Data[0].ProductName)
	assert.Equal(t, inventory.MovementIn, resp.Data[0].Type)
	assert.Equal(t, "20", resp.Data[0].ProductQuantity)

	assert.Equal(t, int64(1), resp.Data[1].ID)
	assert.Equal(t, "Aspirin", resp.Data[1].ProductName)
	assert.Equal(t, "9", resp.Data[1].ProductQuantity)

	out = mustExecute(t, db, "movement", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Ibuprofen")
	assert.Contains(t, lines[2], "Aspirin")
}

func TestRemainingFormulasDiverge(t *testing.T) {
	db := tempDB(t)
	mustExecute(t, db, "product", "add", "Aspirin", "0")
	mustExecute(t, db, "movement", "add", "1", "5", "--type", "IN")
	mustExecute(t, db, "movement", "add", "1", "2", "--type", "IN")
	mustExecute(t, db, "movement", "add", "1", "3", "--type", "OUT")

	out := mustExecute(t, db, "--format", "json", "remaining", "1")
	var resp struct {
		Data RemainingResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, RemainingResult{ProductID: 1, Name: "Aspirin", Remaining: "4"}, resp.Data)

	out = mustExecute(t, db, "--format", "json", "inventory")
	var inv inventoryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &inv))
	require.Len(t, inv.Data, 1)
	assert.Equal(t, "-3", inv.Data[0].Remaining.Decimal.String())
}

func TestRemaining_Rejections(t *testing.T) {
	db := tempDB(t)

	out, err := execute(t, db, "remaining", "x")
	require.Error(t, err)
	assert.Contains(t, out, "Error ["+ErrCodeBadArgument+"]")

	out, err = execute(t, db, "remaining", "7")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeProductNotFound+"]")
}

func TestInventory_NonNumericAndOrder(t *testing.T) {
	db := tempDB(t)
	mustExecute(t, db, "product", "add", "zinc", "5")
	mustExecute(t, db, "product", "add", "Aspirin", "10")
	mustExecute(t, db, "product", "add", "ibuprofen", "boite")

	out := mustExecute(t, db, "inventory")
	assert.Equal(t,
		"ID  NAME       QUANTITY  OUT  REMAINING\n"+
			"2   Aspirin    10        0    10\n"+
			"3   ibuprofen  boite     0    -\n"+
			"1   zinc       5         0    5\n",
		out)

	out = mustExecute(t, db, "--format", "json", "inventory")
	assert.Contains(t, out, `"remaining":null`)
}

func TestEmptyListsJSON(t *testing.T) {
	db := tempDB(t)

	for _, args := range [][]string{{"product", "list"}, {"movement", "list"}, {"inventory"}} {
		out := mustExecute(t, db, append([]string{"--format", "json"}, args...)...)
		assert.JSONEq(t, `{"status":"ok","data":[]}`, out, "%v", args)
	}
}
