package wallet_test

import (
	"context"
	"io/ioutil"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitelabs/go-krypt/wallet"
	"github.com/vitelabs/go-krypt/wallet/keystore"
	"github.com/vitelabs/go-krypt/wallet/rpcwallet"
)

func TestOpen(t *testing.T) {
	dir, err := ioutil.TempDir("", "krypt-wallet")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	w, err := wallet.Open(context.Background(), wallet.Config{Kind: wallet.KindKeyStore, KeyStoreDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &keystore.Wallet{}, w)
	assert.False(t, w.IsAvailable())

	server := rpc.NewServer()
	defer server.Stop()
	client := rpc.DialInProc(server)
	defer client.Close()

	// nothing answers eth_chainId
	w, err = wallet.Open(context.Background(), wallet.Config{Kind: wallet.KindRPC, Client: client})
	require.NoError(t, err)
	assert.IsType(t, &rpcwallet.Wallet{}, w)
	assert.False(t, w.IsAvailable())

	_, err = wallet.Open(context.Background(), wallet.Config{Kind: wallet.KindRPC})
	assert.Error(t, err)

	_, err = wallet.Open(context.Background(), wallet.Config{Kind: "trezor"})
	assert.True(t, errors.Is(err, wallet.ErrUnknownKind))
}
