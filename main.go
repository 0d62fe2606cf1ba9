package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"auralis/client"
	"auralis/web"
)

var rootCmd = &cobra.Command{
	Use:   "auralis",
	Short: "Auralis is a therapy session backend with a live transcription relay",
	Long: `Auralis serves the therapy-session API and the websocket relay that
streams recorded audio through a speech engine and back to the mobile app.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(web.ServeCmd)
	rootCmd.AddCommand(client.TranscribeCmd)

	rootCmd.PersistentFlags().String("http-addr", ":8002", "Listen address")
	rootCmd.PersistentFlags().String("database", "./auralis.db", "SQLite database path")
	rootCmd.PersistentFlags().String("stt-provider", "whisper", "Speech engine (whisper, openai)")
	rootCmd.PersistentFlags().String("whisper-url", "http://127.0.0.1:8003", "Local whisper server URL")
	rootCmd.PersistentFlags().String("target-language", "en", "Output language for final transcripts")

	viper.BindPFlag("http_addr", rootCmd.PersistentFlags().Lookup("http-addr"))
	viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("database"))
	viper.BindPFlag("stt_provider", rootCmd.PersistentFlags().Lookup("stt-provider"))
	viper.BindPFlag("whisper_url", rootCmd.PersistentFlags().Lookup("whisper-url"))
	viper.BindPFlag("target_language", rootCmd.PersistentFlags().Lookup("target-language"))
}

func initConfig() {
	// .env keeps device-local keys out of the shell profile.
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.ReadInConfig()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
