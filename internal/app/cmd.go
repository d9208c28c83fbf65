package app

// Command はアプリケーションの起動モードを表す。
// 1バイナリをserve（ダッシュボードAPI）とworker（スキャンワーカー群）の
// 両方で使い、docker-composeのcommandで切り替える。
type Command string

const (
	// CommandServe はダッシュボードAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandWorker はスキャンワーカーモードで起動することを示す。
	CommandWorker Command = "worker"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "worker":
		return CommandWorker
	case "migrate":
		return CommandMigrate
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}
