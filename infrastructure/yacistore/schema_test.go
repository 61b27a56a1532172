package yacistore

// Subset of the Yaci Store schema the provider queries, used to build
// SQLite test databases. Production tables are owned by the indexer.

type drepRow struct {
	DRepID    string `gorm:"column:drep_id;index"`
	DRepHash  string `gorm:"column:drep_hash;index"`
	TxHash    string `gorm:"column:tx_hash"`
	CertIndex uint32 `gorm:"column:cert_index"`
	CertType  string `gorm:"column:cert_type"`
	Status    string `gorm:"column:status"`
	Deposit   *int64 `gorm:"column:deposit;type:numeric(38)"`
	Epoch     uint32 `gorm:"column:epoch"`
	Slot      uint64 `gorm:"column:slot"`
	BlockTime uint64 `gorm:"column:block_time"`
}

func (drepRow) TableName() string { return "drep" }

type drepRegistrationRow struct {
	TxHash     string  `gorm:"column:tx_hash"`
	CertIndex  uint32  `gorm:"column:cert_index"`
	Type       string  `gorm:"column:type"`
	Deposit    *int64  `gorm:"column:deposit;type:numeric(38)"`
	DRepHash   string  `gorm:"column:drep_hash;index"`
	DRepID     string  `gorm:"column:drep_id"`
	AnchorURL  *string `gorm:"column:anchor_url"`
	AnchorHash *string `gorm:"column:anchor_hash"`
	CredType   string  `gorm:"column:cred_type"`
	Epoch      uint32  `gorm:"column:epoch"`
	Slot       uint64  `gorm:"column:slot"`
	BlockTime  uint64  `gorm:"column:block_time"`
}

func (drepRegistrationRow) TableName() string { return "drep_registration" }

type drepDistRow struct {
	DRepHash string `gorm:"column:drep_hash;index"`
	DRepType string `gorm:"column:drep_type"`
	DRepID   string `gorm:"column:drep_id"`
	Amount   int64  `gorm:"column:amount;type:numeric(38)"`
	Epoch    uint32 `gorm:"column:epoch"`
}

func (drepDistRow) TableName() string { return "drep_dist" }

type delegationVoteRow struct {
	TxHash    string `gorm:"column:tx_hash"`
	CertIndex uint32 `gorm:"column:cert_index"`
	Address   string `gorm:"column:address;index"`
	DRepHash  string `gorm:"column:drep_hash;index"`
	DRepID    string `gorm:"column:drep_id"`
	DRepType  string `gorm:"column:drep_type"`
	Epoch     uint32 `gorm:"column:epoch"`
	Slot      uint64 `gorm:"column:slot"`
	BlockTime uint64 `gorm:"column:block_time"`
}

func (delegationVoteRow) TableName() string { return "delegation_vote" }

type delegationRow struct {
	TxHash    string `gorm:"column:tx_hash"`
	CertIndex uint32 `gorm:"column:cert_index"`
	Address   string `gorm:"column:address;index"`
	PoolID    string `gorm:"column:pool_id"`
	Epoch     uint32 `gorm:"column:epoch"`
	Slot      uint64 `gorm:"column:slot"`
}

func (delegationRow) TableName() string { return "delegation" }

type stakeAddressBalanceRow struct {
	Address  string `gorm:"column:address;index"`
	Quantity int64  `gorm:"column:quantity;type:numeric(38)"`
	Slot     uint64 `gorm:"column:slot"`
	Epoch    uint32 `gorm:"column:epoch"`
}

func (stakeAddressBalanceRow) TableName() string { return "stake_address_balance" }

type rewardRow struct {
	Address        string `gorm:"column:address;index"`
	Amount         int64  `gorm:"column:amount;type:numeric(38)"`
	EarnedEpoch    uint32 `gorm:"column:earned_epoch"`
	SpendableEpoch uint32 `gorm:"column:spendable_epoch"`
	Type           string `gorm:"column:type"`
	PoolID         string `gorm:"column:pool_id"`
	Slot           uint64 `gorm:"column:slot"`
}

func (rewardRow) TableName() string { return "reward" }

type withdrawalRow struct {
	TxHash  string `gorm:"column:tx_hash"`
	Address string `gorm:"column:address;index"`
	Amount  int64  `gorm:"column:amount;type:numeric(38)"`
	Epoch   uint32 `gorm:"column:epoch"`
	Slot    uint64 `gorm:"column:slot"`
}

func (withdrawalRow) TableName() string { return "withdrawal" }

type votingProcedureRow struct {
	TxHash          string  `gorm:"column:tx_hash"`
	Idx             uint32  `gorm:"column:idx"`
	VoterType       string  `gorm:"column:voter_type"`
	VoterHash       string  `gorm:"column:voter_hash;index"`
	GovActionTxHash string  `gorm:"column:gov_action_tx_hash;index"`
	GovActionIndex  uint32  `gorm:"column:gov_action_index"`
	Vote            string  `gorm:"column:vote"`
	AnchorURL       *string `gorm:"column:anchor_url"`
	Epoch           uint32  `gorm:"column:epoch"`
	Slot            uint64  `gorm:"column:slot"`
	BlockTime       *uint64 `gorm:"column:block_time"`
}

func (votingProcedureRow) TableName() string { return "voting_procedure" }

type govActionProposalRow struct {
	TxHash        string  `gorm:"column:tx_hash;index"`
	Idx           uint32  `gorm:"column:idx"`
	Deposit       *int64  `gorm:"column:deposit;type:numeric(38)"`
	ReturnAddress *string `gorm:"column:return_address"`
	AnchorURL     *string `gorm:"column:anchor_url"`
	AnchorHash    *string `gorm:"column:anchor_hash"`
	Type          string  `gorm:"column:type"`
	Details       *string `gorm:"column:details"`
	Epoch         uint32  `gorm:"column:epoch"`
	Slot          uint64  `gorm:"column:slot"`
	BlockTime     *uint64 `gorm:"column:block_time"`
}

func (govActionProposalRow) TableName() string { return "gov_action_proposal" }

type govActionProposalStatusRow struct {
	GovActionTxHash string `gorm:"column:gov_action_tx_hash;index"`
	GovActionIndex  uint32 `gorm:"column:gov_action_index"`
	Type            string `gorm:"column:type"`
	Status          string `gorm:"column:status"`
	Epoch           uint32 `gorm:"column:epoch"`
}

func (govActionProposalStatusRow) TableName() string { return "gov_action_proposal_status" }

type poolRow struct {
	PoolID      string  `gorm:"column:pool_id;index"`
	TxHash      string  `gorm:"column:tx_hash"`
	CertIndex   uint32  `gorm:"column:cert_index"`
	Status      string  `gorm:"column:status"`
	Epoch       uint32  `gorm:"column:epoch"`
	RetireEpoch *uint32 `gorm:"column:retire_epoch"`
	Slot        uint64  `gorm:"column:slot"`
}

func (poolRow) TableName() string { return "pool" }

type poolOfflineDataRow struct {
	PoolID      string  `gorm:"column:pool_id;index"`
	Ticker      *string `gorm:"column:ticker"`
	Name        *string `gorm:"column:name"`
	Description *string `gorm:"column:description"`
	Homepage    *string `gorm:"column:homepage"`
	Slot        uint64  `gorm:"column:slot"`
}

func (poolOfflineDataRow) TableName() string { return "pool_offline_data" }

type epochStakeRow struct {
	Epoch   uint32 `gorm:"column:epoch;index"`
	Address string `gorm:"column:address"`
	Amount  int64  `gorm:"column:amount;type:numeric(38)"`
	PoolID  string `gorm:"column:pool_id;index"`
}

func (epochStakeRow) TableName() string { return "epoch_stake" }

type committeeMemberRow struct {
	Hash         string  `gorm:"column:hash;index"`
	CredType     string  `gorm:"column:cred_type"`
	StartEpoch   *uint32 `gorm:"column:start_epoch"`
	ExpiredEpoch *uint32 `gorm:"column:expired_epoch"`
	Epoch        uint32  `gorm:"column:epoch"`
	Slot         uint64  `gorm:"column:slot"`
}

func (committeeMemberRow) TableName() string { return "committee_member" }

type committeeRegistrationRow struct {
	TxHash    string `gorm:"column:tx_hash"`
	CertIndex uint32 `gorm:"column:cert_index"`
	ColdKey   string `gorm:"column:cold_key;index"`
	HotKey    string `gorm:"column:hot_key"`
	CredType  string `gorm:"column:cred_type"`
	Epoch     uint32 `gorm:"column:epoch"`
	Slot      uint64 `gorm:"column:slot"`
}

func (committeeRegistrationRow) TableName() string { return "committee_registration" }

type blockRow struct {
	Hash      string `gorm:"column:hash"`
	Number    uint64 `gorm:"column:number;index"`
	Slot      uint64 `gorm:"column:slot"`
	Epoch     uint32 `gorm:"column:epoch"`
	BlockTime int64  `gorm:"column:block_time"`
}

func (blockRow) TableName() string { return "block" }

type epochRow struct {
	Number     uint32 `gorm:"column:number;index"`
	StartTime  uint64 `gorm:"column:start_time"`
	EndTime    uint64 `gorm:"column:end_time"`
	BlockCount uint32 `gorm:"column:block_count"`
}

func (epochRow) TableName() string { return "epoch" }

func allModels() []any {
	return []any{
		&drepRow{}, &drepRegistrationRow{}, &drepDistRow{}, &delegationVoteRow{},
		&delegationRow{}, &stakeAddressBalanceRow{}, &rewardRow{}, &withdrawalRow{},
		&votingProcedureRow{}, &govActionProposalRow{}, &govActionProposalStatusRow{},
		&poolRow{}, &poolOfflineDataRow{}, &epochStakeRow{}, &committeeMemberRow{},
		&committeeRegistrationRow{}, &blockRow{}, &epochRow{},
	}
}
