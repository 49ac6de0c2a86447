package bot

const (
	menuGameInfo      = "ℹ️ Game Info"
	menuMyValues      = "🎲 My Values"
	menuBalance       = "💰 Balance"
	menuGenerate      = "🔮 Generate"
	menuSellRandom    = "🎟 Sell Random"
	menuSellGenerated = "🎫 Sell Generated"
	menuMainHelp      = "📖 Help"
	menuAbout         = "©️ About"

	callbackRefresh = "REFRESH"
	callbackKey     = "KEY"

	aboutMessage = "*Lucky7* - a lottery played against seven lucky numbers\n" +
		"Contract source and dapp by [matiasbn](https://github.com/matiasbn)"
)

var (
	helpMessage = "`DISCLAIMER !`\n" +
		"\n" +
		"🔴 All prizes are considered friend gifts.\n" +
		"🟡 This bot is in no way sponsored, endorsed or administered by the Ethereum Foundation.\n" +
		"🟣 Must be 18 years old or older to play!\n" +
		"⚪️ Most importantly have fun and NO DRAMA!\n" +
		"\n" +
		"\n" +
		"`Instructions`\n" +
		"\n" +
		"This is a Telegram Bot that plays the Lucky7 lottery smart contract.\n\n" +
		"The bot will generate a wallet for you from which you pay for tickets and where you receive the prizes.\n\n" +
		"Every ticket is computed from two parameters, `mu` and `i`, delivered by an oracle. " +
		"`Generate` asks for new parameters so you can look at them first, `Sell Generated` turns them into a ticket " +
		"and `Sell Random` does both in one go. Your previous ticket is kept until a new one is sold.\n\n" +
		"The seven tickets closest to the lucky numbers share the prize.\n\n" +
		"You can watch the game's progress and discuss free topics on @Lucky7Group\n" +
		"\n" +
		"🍀 Good luck!"
)
