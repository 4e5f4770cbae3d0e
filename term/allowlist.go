package term

// allowlist holds every name that may become a Symbol.
var allowlist = func() map[string]struct{} {
	m := make(map[string]struct{}, len(allowlistNames))
	for _, n := range allowlistNames {
		m[n] = struct{}{}
	}
	return m
}()

var allowlistNames = [...]string{
	// Core struct fields
	"__struct__",
	"name",
	"id",
	"type",
	"value",
	"data",
	"metadata",
	"status",

	// Common fields
	"created_at",
	"updated_at",
	"deleted_at",
	"description",
	"title",
	"content",
	"url",
	"email",
	"password",
	"role",
	"permissions",
	"settings",
	"config",
	"options",

	// Relationship fields
	"user_id",
	"parent_id",
	"owner",
	"group",

	// State fields
	"enabled",
	"active",
	"locked",
	"visible",
	"public",
	"private",
	"shared",

	// Error handling
	"errors",
	"warnings",
	"messages",
	"success",
	"error",
	"message",
	"code",

	// Common attributes
	"category",
	"customer",
	"format",
	"items",
	"language",
	"locale",
	"priority",
	"result",
	"score",
	"scores",
	"source",
	"state",
	"tags",
	"target",
	"timezone",
	"version",
	"amount",
	"currency",
	"price",
	"quantity",
	"total",
	"subtotal",
	"tax",
	"discount",
	"shipping",
	"handling",

	// Letters
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
	"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",

	// Web3 and Crypto
	// Blockchain
	"chain_id",
	"network",
	"mainnet",
	"testnet",
	"block_number",
	"block_hash",
	"block_timestamp",
	"gas_price",
	"gas_limit",
	"gas_used",
	"nonce",
	"confirmations",

	// Transactions
	"tx_hash",
	"transaction_hash",
	"from_address",
	"to_address",
	"input_data",
	"signature",
	"signed",
	"pending",
	"confirmed",
	"failed",
	"reverted",
	"receipt",

	// Accounts and Wallets
	"address",
	"private_key",
	"public_key",
	"mnemonic",
	"seed_phrase",
	"derivation_path",
	"wallet",
	"account",
	"balance",
	"allowance",

	// Smart Contracts
	"contract_address",
	"contract_name",
	"abi",
	"bytecode",
	"deployed",
	"verified",
	"implementation",
	"proxy",
	"delegate",
	"upgradeable",

	// Tokens
	"token_address",
	"token_id",
	"token_uri",
	"token_type",
	"symbol",
	"decimals",
	"total_supply",
	"max_supply",
	"circulating_supply",
	"holders",
	"transfers",
	"approvals",

	// NFTs
	"collection",
	"asset_id",
	"metadata_uri",
	"attributes",
	"rarity",
	"mint_price",
	"mint_date",
	"mint_status",
	"royalties",
	"creator",
	"owner_history",

	// DeFi
	"pool",
	"pair",
	"liquidity",
	"reserves",
	"swap",
	"stake",
	"unstake",
	"yield",
	"apy",
	"apr",
	"rewards",
	"farm",
	"harvest",
	"collateral",
	"debt",
	"borrow",
	"lend",
	"repay",
	"liquidate",

	// Governance
	"proposal",
	"vote",
	"quorum",
	"delegation",
	"snapshot",
	"voting_power",
	"timelock",
	"executor",
	"dao",

	// Protocol-specific
	"erc20",
	"erc721",
	"erc1155",
	"uniswap",
	"sushiswap",
	"compound",
	"aave",
	"maker",
	"chainlink",
	"oracle",
	"price_feed",

	// Consensus and Network
	"consensus",
	"pow",
	"pos",
	"validator",
	"node",
	"peer",
	"sync_status",
	"network_id",
	"rpc_url",
	"websocket",

	// Security
	"signature_type",
	"signed_message",
	"recovered_address",
	"merkle_root",
	"merkle_proof",
	"whitelist",
	"blacklist",
	"paused",
	"frozen",

	// Events and Logs
	"event_name",
	"event_signature",
	"log_index",
	"topics",
	"indexed",
	"filters",
	"subscription",

	// Layer 2 and Scaling
	"l2",
	"rollup",
	"optimistic",
	"zk",
	"bridge",
	"channel",
	"batch",
	"proof",
	"commitment",

	// IPFS and Storage
	"ipfs_hash",
	"cid",
	"pinned",
	"storage_provider",
	"arweave",
	"filecoin",

	// Misc Web3
	"web3",
	"provider",
	"signer",
	"chain",
	"explorer_url",
	"fiat_value",
	"gas_token",

	// Names used by this system
	"nil",
	"true",
	"false",
	"ok",
	"undefined",
	"input_schema",
	"output_schema",
	"handler",
	"path",
	"examples",
	"starlark",
	"python",
	"module",
	"available",
	"call",
	"execute",
}
