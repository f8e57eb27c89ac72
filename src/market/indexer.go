package market

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/config"
	"github.com/UniqueNetwork/unique-marketplace-backend-sub000/src/utils/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// IndexerClient implements Transport over the indexer's HTTP API
type IndexerClient struct {
	log    *logrus.Entry
	client *resty.Client
}

type indexerLog struct {
	Address     string   `json:"address"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
	BlockNumber uint64   `json:"blockNumber"`
	TxHash      string   `json:"transactionHash"`
	LogIndex    uint     `json:"logIndex"`
}

type indexerLogsResponse struct {
	Logs       []indexerLog `json:"logs"`
	NextCursor string       `json:"nextCursor"`
	HasNext    bool         `json:"hasNext"`
	LastBlock  uint64       `json:"lastBlock"`
}

type indexerEventsResponse struct {
	Events     []*RawCollectionEvent `json:"events"`
	NextCursor string                `json:"nextCursor"`
	HasNext    bool                  `json:"hasNext"`
	LastBlock  uint64                `json:"lastBlock"`
}

func NewIndexerClient(indexerConfig *config.Indexer) (self *IndexerClient) {
	self = new(IndexerClient)
	self.log = logger.NewSublogger("indexer-client")
	self.client = resty.New().
		SetBaseURL(indexerConfig.Url).
		SetTimeout(indexerConfig.RequestTimeout).
		SetHeader("Accept", "application/json")
	return
}

func (self *IndexerClient) GetLogs(ctx context.Context, contractAddress string, fromBlock uint64, cursor string, limit int) (page *LogsPage, err error) {
	var body indexerLogsResponse

	resp, err := self.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"contractAddress": contractAddress,
			"fromBlock":       strconv.FormatUint(fromBlock, 10),
			"cursor":          cursor,
			"limit":           strconv.Itoa(limit),
		}).
		SetResult(&body).
		Get("/v1/evm/logs")
	if err != nil {
		return
	}
	if resp.IsError() {
		return nil, fmt.Errorf("indexer returned %s", resp.Status())
	}

	page = &LogsPage{
		NextCursor: body.NextCursor,
		HasNext:    body.HasNext,
		LastBlock:  body.LastBlock,
		Logs:       make([]types.Log, 0, len(body.Logs)),
	}

	for _, raw := range body.Logs {
		var converted types.Log
		converted, err = self.convertLog(raw)
		if err != nil {
			return nil, err
		}
		page.Logs = append(page.Logs, converted)
	}

	return
}

func (self *IndexerClient) GetCollectionEvents(ctx context.Context, fromBlock uint64, sections []string, cursor string, limit int) (page *CollectionEventsPage, err error) {
	var body indexerEventsResponse

	resp, err := self.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fromBlock": strconv.FormatUint(fromBlock, 10),
			"cursor":    cursor,
			"limit":     strconv.Itoa(limit),
		}).
		SetQueryParamsFromValues(url.Values{"section": sections}).
		SetResult(&body).
		Get("/v1/events")
	if err != nil {
		return
	}
	if resp.IsError() {
		return nil, fmt.Errorf("indexer returned %s", resp.Status())
	}

	page = &CollectionEventsPage{
		Events:     body.Events,
		NextCursor: body.NextCursor,
		HasNext:    body.HasNext,
		LastBlock:  body.LastBlock,
	}
	return
}

func (self *IndexerClient) convertLog(raw indexerLog) (out types.Log, err error) {
	out.Address = common.HexToAddress(raw.Address)
	out.BlockNumber = raw.BlockNumber
	out.TxHash = common.HexToHash(raw.TxHash)
	out.Index = raw.LogIndex

	out.Topics = make([]common.Hash, 0, len(raw.Topics))
	for _, topic := range raw.Topics {
		out.Topics = append(out.Topics, common.HexToHash(topic))
	}

	out.Data, err = hexutil.Decode(raw.Data)
	if err != nil {
		err = fmt.Errorf("malformed log data at block %d: %w", raw.BlockNumber, err)
	}
	return
}
