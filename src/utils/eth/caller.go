package eth

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/abis"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/config"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/logger"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

// Caller submits reconciliation calls to the marketplace contract.
// The contract answers with its own TokenRevoked/TokenApproved event,
// which flows back through the regular log stream and corrects the ledger.
type Caller interface {
	CheckApproved(ctx context.Context, contractAddress string, collectionId, tokenId uint32) error
}

type ContractCaller struct {
	log    *logrus.Entry
	client *ethclient.Client

	signerKey *ecdsa.PrivateKey
	from      common.Address
	chainId   *big.Int
	gasLimit  uint64

	// Contract version per address, selects the packing ABI
	versions map[string]uint32
}

func NewContractCaller(marketConfig *config.Market, contracts []model.Contract) (self *ContractCaller, err error) {
	self = new(ContractCaller)
	self.log = logger.NewSublogger("contract-caller")

	self.client, err = ethclient.Dial(marketConfig.RpcUrl)
	if err != nil {
		self.log.WithError(err).Error("Cannot connect to RPC endpoint")
		return
	}

	if marketConfig.SignerKey == "" {
		err = errors.New("signer key not configured")
		return
	}
	self.signerKey, err = crypto.HexToECDSA(marketConfig.SignerKey)
	if err != nil {
		self.log.WithError(err).Error("Cannot parse signer key")
		return
	}
	self.from = crypto.PubkeyToAddress(self.signerKey.PublicKey)
	self.chainId = big.NewInt(marketConfig.ChainId)
	self.gasLimit = marketConfig.GasLimit

	self.versions = make(map[string]uint32, len(contracts))
	for _, contract := range contracts {
		self.versions[contract.Address] = contract.Version
	}

	return
}

func (self *ContractCaller) CheckApproved(ctx context.Context, contractAddress string, collectionId, tokenId uint32) (err error) {
	version, ok := self.versions[contractAddress]
	if !ok {
		return errors.New("contract not registered")
	}

	contractAbi, err := abis.Get(version)
	if err != nil {
		return
	}

	data, err := contractAbi.Pack("checkApproved", collectionId, tokenId)
	if err != nil {
		return
	}

	nonce, err := self.client.PendingNonceAt(ctx, self.from)
	if err != nil {
		return
	}

	gasPrice, err := self.client.SuggestGasPrice(ctx)
	if err != nil {
		return
	}

	to := common.HexToAddress(contractAddress)
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Gas:      self.gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(self.chainId), self.signerKey)
	if err != nil {
		return
	}

	err = self.client.SendTransaction(ctx, signed)
	if err != nil {
		return
	}

	self.log.WithField("tx_id", signed.Hash().String()).
		WithField("collection_id", collectionId).
		WithField("token_id", tokenId).
		Debug("Submitted checkApproved transaction")
	return
}
