package checksum

import "github.com/hwobserve/hwobserve/pkg/platform"

// Supported vendor releases. Hardware vendors forbid redistribution of these
// artifacts, so the operator attaches them and we verify the digest here.

var StorCLIVersions = []VersionInfo{
	{
		Version:   "007.2705.0000.0000",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    "45ff0d3c7fc8b77f64de7de7b3698307971546a6be00982934a19ee44f5d91bb",
	},
	{
		Version:   "007.2705.0000.0000",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchARM64},
		SHA256:    "9c36caacb6b7f956a9f5bcdb3f37d24e4aa8263ce01243b251092a39e5e32e35",
	},
	{
		Version:   "007.2612.0000.0000",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    "5ab2c1b608934626817828ced85e4aeaee7dc97fbd6e3f4fed00b13a95a06e14",
	},
	{
		Version:   "007.2612.0000.0000",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchARM64},
		SHA256:    "d74b4598219fda94f6e045e6b5ea89757bda8d2ff82453afafcc1caad98195aa",
	},
	{
		Version:   "007.2508.0000.0000",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    "17c3f5292de6491f1388c9305ba65836730614b6defe17039b427fced2f75e0b",
	},
	{
		Version:   "007.2408.0000.0000",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    "8ecf2d46e253e243c5d169adcd84f2701e52e3815913694f074e80af5a98cbab",
	},
	{
		Version:   "007.2310.0000.0000",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    "94cbef2ec2ca58700a49e646a7bded3a49ddab4646a9d5d178bc4ccb2996cb73",
	},
}

var PercCLIVersions = []VersionInfo{
	{
		Version:   "007.2313.0000.0000",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    "043f7d6235cf125072e95d748cb98f5db42965f218de30f6f72f5503a626e4e3",
	},
	{
		Version:   "007.1623.0000.0000",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    "e46d955241c932023caf63862cd9dacb2b723b7f944340efb0e5afb6a2681e9d",
	},
	{
		Version:   "007.1420.0000.0000",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    "8a405000ea592e1d2999313ade07609a7abcfa24d1b9b35bb242bb6aff75a6be",
	},
	{
		Version:   "007.1327.0000.0000",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    "53c8ee43808779f8263c25b3cb975d816d207659684f3c7de1df4bbd2447ead4",
	},
}

var SAS2IRCUVersions = []VersionInfo{
	{
		Version:   "20.00.00.00",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    "37467826d0b22aad47287efe70bb34e47f475d70e9b1b64cbd63f57607701e73",
	},
	{
		Version:   "19.00.00.00",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    "4baaec21865973c0a6da617e37850cc27512715e6ab22df18b1f67d068e5095c",
	},
	{
		Version:   "18.00.00.00",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    "b6ed72275066e80ebe9813cd15f1d019eba9daddbd9dfd8ad426da78801f15d8",
	},
	{
		Version:   "17.00.00.00",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    "07e9236b99bbe4a3ae6148f8668e1ce0331d83c2fcb0c4841d000454c6200c1f",
	},
	{
		Version:   "16.00.00.00",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    "a8653117067847042bb83e7b51f02d8f2db94e91ce95842efea0dffcb655c966",
	},
}

var SAS3IRCUVersions = []VersionInfo{
	{
		Version:   "17.00.00.00",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    "7fa299a36254c582cf579d197463d6e59ffa9270b7241d98d0e477f05235be26",
	},
	{
		Version:   "17.00.00.00",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchARM64},
		SHA256:    "0e668f7066b74626671a2e8657ab40e29d7ebd1f4b96afe2e0c5f1732f4e4cec",
	},
	{
		Version:   "16.00.00.00",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    "f150eb37bb332668949a3eccf9636e0e03f874aecd17a39d586082c6be1386bd",
	},
	{
		Version:   "16.00.00.00",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchARM64},
		SHA256:    "654096f29d57cbab021800d1dc96ee0a8f82ee34dae3c60e940dd96fb6a623b5",
	},
	{
		Version:   "15.00.00.00",
		AllSeries: true,
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    "5825b90964d1950551e5ed5100ddf1141360b0acf8dd3c6ddb4fe5874d6bbabb",
	},
}
