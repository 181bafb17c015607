package txadapter

import (
	"testing"

	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/testkit"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func buildGrpcTx() *pb.SubscribeUpdateTransactionInfo {
	user := testkit.Key(1)
	readonlySigner := testkit.Key(2)
	pool := testkit.Key(3)
	program := consts.RaydiumCPMMProgram
	alt := testkit.Key(4)
	stack := uint32(2)

	return &pb.SubscribeUpdateTransactionInfo{
		Signature: testkit.Sig(1),
		Index:     17,
		Transaction: &pb.Transaction{
			Signatures: [][]byte{testkit.Sig(1)},
			Message: &pb.Message{
				Header: &pb.MessageHeader{
					NumRequiredSignatures:       2,
					NumReadonlySignedAccounts:   1,
					NumReadonlyUnsignedAccounts: 1,
				},
				AccountKeys: [][]byte{user[:], readonlySigner[:], pool[:], program[:]},
				Instructions: []*pb.CompiledInstruction{
					{ProgramIdIndex: 3, Accounts: []byte{0, 2, 4}, Data: []byte{1, 2}},
				},
			},
		},
		Meta: &pb.TransactionStatusMeta{
			PreBalances:  []uint64{10, 0, 0, 1},
			PostBalances: []uint64{8, 0, 0, 1},
			InnerInstructions: []*pb.InnerInstructions{
				{Index: 0, Instructions: []*pb.InnerInstruction{
					{ProgramIdIndex: 3, Accounts: []byte{2}, Data: []byte{7}, StackHeight: &stack},
				}},
			},
			PostTokenBalances: []*pb.TokenBalance{{
				AccountIndex:  2,
				Mint:          consts.USDCMintStr,
				Owner:         user.String(),
				ProgramId:     consts.TokenProgramStr,
				UiTokenAmount: &pb.UiTokenAmount{Amount: "1234567", Decimals: 6},
			}},
			LoadedWritableAddresses: [][]byte{alt[:]},
			LogMessages:             []string{"Program log: hi"},
		},
	}
}

func TestIsValidGrpcTx(t *testing.T) {
	tx := buildGrpcTx()
	assert.True(t, IsValidGrpcTx(tx))

	vote := proto.Clone(tx).(*pb.SubscribeUpdateTransactionInfo)
	vote.IsVote = true
	assert.False(t, IsValidGrpcTx(vote))

	failed := proto.Clone(tx).(*pb.SubscribeUpdateTransactionInfo)
	failed.Meta.Err = &pb.TransactionError{Err: []byte{1}}
	assert.False(t, IsValidGrpcTx(failed))

	assert.False(t, IsValidGrpcTx(nil))
}

func TestFromGrpcTx(t *testing.T) {
	src := buildGrpcTx()
	snapshot := proto.Clone(src)

	txCtx := &core.TxContext{Slot: 99, BlockTime: 1_700_000_000}
	raw, err := FromGrpcTx(txCtx, src)
	require.NoError(t, err)
	assert.True(t, proto.Equal(snapshot, src), "input must not be mutated")

	assert.Equal(t, uint64(99), raw.Slot)
	assert.Equal(t, uint32(17), raw.TxIndex)
	require.Len(t, raw.AccountKeys, 4)
	assert.True(t, raw.AccountKeys[0].Signer && raw.AccountKeys[0].Writable)
	assert.True(t, raw.AccountKeys[1].Signer)
	assert.False(t, raw.AccountKeys[1].Writable)
	assert.True(t, raw.AccountKeys[2].Writable)
	assert.False(t, raw.AccountKeys[3].Writable)
	assert.Len(t, raw.LoadedWritable, 1)
	assert.Equal(t, uint64(1234567), raw.PostTokenBalances[0].Amount)
	assert.Equal(t, uint32(2), raw.InnerGroups[0].Instructions[0].StackHeight)

	adapted, err := AdaptGrpcTx(txCtx, src)
	require.NoError(t, err)
	assert.Same(t, txCtx, adapted.TxCtx)
	assert.Len(t, adapted.Signers, 2)
	assert.Equal(t, testkit.Key(4), adapted.TopLevel[0].Accounts[2])
	assert.Equal(t, uint64(1234567), adapted.Balances[testkit.Key(3)].PostBalance)
}

func TestFromGrpcTxRejectsBadPubkey(t *testing.T) {
	src := buildGrpcTx()
	src.Meta.LoadedReadonlyAddresses = [][]byte{{1, 2, 3}}
	_, err := FromGrpcTx(nil, src)
	assert.ErrorIs(t, err, core.ErrInvalidTransaction)
}

func TestFromGrpcTxInvalidTokenAmountWarns(t *testing.T) {
	src := buildGrpcTx()
	src.Meta.PreTokenBalances = []*pb.TokenBalance{{
		AccountIndex:  2,
		Mint:          consts.USDCMintStr,
		Owner:         testkit.Key(1).String(),
		UiTokenAmount: &pb.UiTokenAmount{Amount: "12x", Decimals: 6},
	}}

	raw, err := FromGrpcTx(nil, src)
	require.NoError(t, err)
	assert.Empty(t, raw.PreTokenBalances)
	require.Len(t, raw.PostTokenBalances, 1)
	require.Len(t, raw.Warnings, 1)
	assert.Equal(t, core.WarnInvalidEncoding, raw.Warnings[0].Kind)
	assert.Contains(t, raw.Warnings[0].Message, "preTokenBalances account 2")

	// 跳过非法的 pre 条目，post 余额不受影响
	adapted, err := Adapt(raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(1234567), adapted.Balances[testkit.Key(3)].PostBalance)
}
