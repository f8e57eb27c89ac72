package market

import (
	"math/big"
	"testing"

	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/abis"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/suite"
)

const testContract = "0x00000000000000000000000000000000000000a1"

func TestDecoderTestSuite(t *testing.T) {
	suite.Run(t, new(DecoderTestSuite))
}

type DecoderTestSuite struct {
	suite.Suite
	decoder *Decoder
}

func (s *DecoderTestSuite) SetupSuite() {
	s.decoder = NewDecoder([]model.Contract{
		{Address: testContract, Version: 1},
	})
}

func (s *DecoderTestSuite) packLog(eventName string, orderId uint32, amount, price int64) types.Log {
	contractAbi, err := abis.Get(1)
	s.Require().NoError(err)

	abiEvent, ok := contractAbi.Events[eventName]
	s.Require().True(ok)

	data, err := abiEvent.Inputs.Pack(
		orderId,
		uint32(7),
		uint32(42),
		big.NewInt(amount),
		big.NewInt(price),
		uint32(0),
		common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"),
	)
	s.Require().NoError(err)

	return types.Log{
		Address:     common.HexToAddress(testContract),
		Topics:      []common.Hash{abiEvent.ID},
		Data:        data,
		BlockNumber: 1000,
	}
}

func (s *DecoderTestSuite) TestDecodeTokenListed() {
	event, err := s.decoder.Decode(testContract, s.packLog("TokenListed", 1, 10, 500))
	s.NoError(err)
	s.Require().NotNil(event)
	s.Equal(EventTokenListed, event.Kind)
	s.Equal(uint32(1), event.OrderId)
	s.Equal(uint32(7), event.CollectionId)
	s.Equal(uint32(42), event.TokenId)
	s.Zero(event.Amount.Cmp(big.NewInt(10)))
	s.Zero(event.Price.Cmp(big.NewInt(500)))
	s.Equal(common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"), event.Seller)
	s.Equal(uint64(1000), event.BlockNumber)
}

func (s *DecoderTestSuite) TestDecodeAllEventKinds() {
	kinds := map[string]EventKind{
		"TokenListed":       EventTokenListed,
		"TokenPriceChanged": EventTokenPriceChanged,
		"TokenPurchased":    EventTokenPurchased,
		"TokenRevoked":      EventTokenRevoked,
		"TokenApproved":     EventTokenApproved,
	}
	for name, kind := range kinds {
		event, err := s.decoder.Decode(testContract, s.packLog(name, 3, 1, 100))
		s.NoError(err, name)
		s.Equal(kind, event.Kind, name)
	}
}

func (s *DecoderTestSuite) TestUnknownContract() {
	_, err := s.decoder.Decode("0x00000000000000000000000000000000000000ff", s.packLog("TokenListed", 1, 10, 500))
	s.ErrorIs(err, ErrUnknownContract)
}

func (s *DecoderTestSuite) TestUnknownTopic() {
	rawLog := s.packLog("TokenListed", 1, 10, 500)
	rawLog.Topics = []common.Hash{common.HexToHash("0xdeadbeef")}

	_, err := s.decoder.Decode(testContract, rawLog)
	s.ErrorIs(err, ErrUndecodableLog)
}

func (s *DecoderTestSuite) TestMissingTopics() {
	rawLog := s.packLog("TokenListed", 1, 10, 500)
	rawLog.Topics = nil

	_, err := s.decoder.Decode(testContract, rawLog)
	s.ErrorIs(err, ErrUndecodableLog)
}

func (s *DecoderTestSuite) TestTruncatedData() {
	rawLog := s.packLog("TokenListed", 1, 10, 500)
	rawLog.Data = rawLog.Data[:8]

	_, err := s.decoder.Decode(testContract, rawLog)
	s.ErrorIs(err, ErrUndecodableLog)
}
