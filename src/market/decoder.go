package market

import (
	"errors"
	"math/big"

	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/abis"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/logger"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

var (
	// The log's emitter is not a registered marketplace contract.
	// New contracts are registered out-of-band, so this is logged and dropped.
	ErrUnknownContract = errors.New("unknown contract")

	// The topic doesn't match any event of the contract's ABI version
	ErrUndecodableLog = errors.New("undecodable log")
)

// Decoder turns raw EVM logs into typed order events using the ABI
// selected by the emitting contract's registered version. Decoding is pure,
// no side effects beyond counters.
type Decoder struct {
	log *logrus.Entry

	// Contract version per address
	versions map[string]uint32
}

func NewDecoder(contracts []model.Contract) (self *Decoder) {
	self = new(Decoder)
	self.log = logger.NewSublogger("decoder")
	self.versions = make(map[string]uint32, len(contracts))
	for _, contract := range contracts {
		self.versions[contract.Address] = contract.Version
	}
	return
}

func (self *Decoder) Decode(contractAddress string, rawLog types.Log) (event *OrderEvent, err error) {
	version, ok := self.versions[contractAddress]
	if !ok {
		err = ErrUnknownContract
		return
	}

	contractAbi, err := abis.Get(version)
	if err != nil {
		err = ErrUnknownContract
		return
	}

	if len(rawLog.Topics) == 0 {
		err = ErrUndecodableLog
		return
	}

	abiEvent, err := contractAbi.EventByID(rawLog.Topics[0])
	if err != nil {
		err = ErrUndecodableLog
		return
	}

	var kind EventKind
	switch abiEvent.Name {
	case "TokenListed":
		kind = EventTokenListed
	case "TokenPriceChanged":
		kind = EventTokenPriceChanged
	case "TokenPurchased":
		kind = EventTokenPurchased
	case "TokenRevoked":
		kind = EventTokenRevoked
	case "TokenApproved":
		kind = EventTokenApproved
	default:
		err = ErrUndecodableLog
		return
	}

	values := make(map[string]interface{})
	err = contractAbi.UnpackIntoMap(values, abiEvent.Name, rawLog.Data)
	if err != nil {
		self.log.WithError(err).WithField("event", abiEvent.Name).Debug("Failed to unpack log data")
		err = ErrUndecodableLog
		return
	}

	event = &OrderEvent{
		Kind:            kind,
		ContractAddress: contractAddress,
		BlockNumber:     rawLog.BlockNumber,
	}

	event.OrderId, err = fieldUint32(values, "id")
	if err != nil {
		return nil, err
	}
	event.CollectionId, err = fieldUint32(values, "collectionId")
	if err != nil {
		return nil, err
	}
	event.TokenId, err = fieldUint32(values, "tokenId")
	if err != nil {
		return nil, err
	}
	event.Amount, err = fieldBigInt(values, "amount")
	if err != nil {
		return nil, err
	}
	event.Price, err = fieldBigInt(values, "price")
	if err != nil {
		return nil, err
	}
	event.Currency, err = fieldUint32(values, "currency")
	if err != nil {
		return nil, err
	}
	event.Seller, err = fieldAddress(values, "seller")
	if err != nil {
		return nil, err
	}

	return
}

func fieldUint32(values map[string]interface{}, name string) (uint32, error) {
	v, ok := values[name].(uint32)
	if !ok {
		return 0, ErrUndecodableLog
	}
	return v, nil
}

func fieldBigInt(values map[string]interface{}, name string) (*big.Int, error) {
	v, ok := values[name].(*big.Int)
	if !ok {
		return nil, ErrUndecodableLog
	}
	return v, nil
}

func fieldAddress(values map[string]interface{}, name string) (common.Address, error) {
	v, ok := values[name].(common.Address)
	if !ok {
		return common.Address{}, ErrUndecodableLog
	}
	return v, nil
}
